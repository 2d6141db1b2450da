package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/adpilot/campaign-sync-api/infrastructure/repository"
	"github.com/adpilot/campaign-sync-api/internal/config"
	"github.com/adpilot/campaign-sync-api/internal/usecases/syncing"
)

// PlatformSyncService gerencia o agendamento e a execução da sincronização
// periódica de campanhas de todos os times conectados
type PlatformSyncService struct {
	scheduler           *gocron.Scheduler
	config              config.Trigger
	creds               repository.CredentialRepository
	syncer              syncing.Syncer
	baseCtx             context.Context
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

func NewPlatformSyncService(
	creds repository.CredentialRepository,
	syncer syncing.Syncer,
	appConfig *config.Config,
) *PlatformSyncService {
	scheduler := gocron.NewScheduler(time.UTC)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       appConfig.Trigger.CronSchedule,
		"run_timeout_minutes": appConfig.Trigger.RunTimeoutMinutes,
		"sync_enabled":        appConfig.Trigger.Enabled,
	}).Info("Configuração do agendador de sincronização de campanhas carregada")

	return &PlatformSyncService{
		scheduler:   scheduler,
		config:      appConfig.Trigger,
		creds:       creds,
		syncer:      syncer,
		baseCtx:     context.Background(),
		syncRunning: false,
	}
}

// Start inicia o agendador
func (s *PlatformSyncService) Start(ctx context.Context) error {
	s.baseCtx = ctx

	if !s.config.Enabled {
		logrus.Info("Sincronização periódica de campanhas desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de sincronização de campanhas")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncAllTeams(s.baseCtx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de campanhas: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização de campanhas")
		s.scheduler.Stop()
	}()

	return nil
}

// syncAllTeams sincroniza todos os times com credenciais ativas.
// Uma execução que ultrapassa o timeout é interrompida: contas ainda não
// processadas ficam para o próximo disparo do cron
func (s *PlatformSyncService) syncAllTeams(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de campanhas já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	startTime := time.Now()
	s.lastSyncStartedAt = startTime
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.RunTimeoutMinutes)*time.Minute)
	defer cancel()

	logrus.Info("Iniciando sincronização de campanhas para todos os times")

	teams, err := s.creds.ListTeamsWithActiveCredentials()
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar times para sincronização de campanhas")
		return
	}

	if len(teams) == 0 {
		logrus.Info("Nenhum time com credenciais ativas encontrado para sincronização")
		return
	}

	var succeeded, failed int
	for _, teamID := range teams {
		if runCtx.Err() != nil {
			logrus.WithFields(logrus.Fields{
				"remaining_teams": len(teams) - succeeded - failed,
			}).Warn("Tempo de execução esgotado, interrompendo sincronização de campanhas")
			break
		}

		batch, err := s.syncer.SyncAllPlatforms(runCtx, teamID)
		if err != nil {
			logrus.WithField("team_id", teamID).WithError(err).Error("Erro ao sincronizar time")
			failed++
			continue
		}

		if batch.Success {
			succeeded++
		} else {
			failed++
		}
	}

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration":  duration.String(),
		"teams":     len(teams),
		"succeeded": succeeded,
		"failed":    failed,
	}).Info("Sincronização de campanhas concluída")

	s.syncMutex.Lock()
	s.lastSyncCompletedAt = time.Now()
	s.syncMutex.Unlock()
}

// TriggerManualSync inicia manualmente uma sincronização de todos os times
func (s *PlatformSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de campanhas já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando sincronização manual de campanhas")
	go s.syncAllTeams(s.baseCtx)
}

// GetStatus retorna o status atual do agendador
func (s *PlatformSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.Enabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_run_timeout_min":   s.config.RunTimeoutMinutes,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
