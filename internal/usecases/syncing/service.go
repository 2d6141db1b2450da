package syncing

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adpilot/campaign-sync-api/infrastructure/repository"
	"github.com/adpilot/campaign-sync-api/internal/config"
	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
	"github.com/adpilot/campaign-sync-api/pkg/retry"
)

// Service orquestra a sincronização de campanhas e métricas de todas as
// plataformas conectadas. Contas falham de forma isolada: um erro em uma
// conta nunca interrompe as demais
type Service struct {
	creds     repository.CredentialRepository
	campaigns repository.CampaignRepository
	metrics   repository.MetricRepository
	registry  *platforms.Registry
	tokens    TokenEnsurer
	cfg       config.Sync
	policy    retry.Policy
}

func NewService(
	creds repository.CredentialRepository,
	campaigns repository.CampaignRepository,
	metrics repository.MetricRepository,
	registry *platforms.Registry,
	tokens TokenEnsurer,
	cfg config.Sync,
) *Service {
	return &Service{
		creds:     creds,
		campaigns: campaigns,
		metrics:   metrics,
		registry:  registry,
		tokens:    tokens,
		cfg:       cfg,
		policy:    retry.DefaultPolicy(cfg.RetryMaxAttempts),
	}
}

// SyncPlatform sincroniza todas as contas conectadas da plataforma.
// As contas são processadas com concorrência limitada; o resultado agrega
// o desfecho individual de cada uma
func (s *Service) SyncPlatform(ctx context.Context, teamID string, platform domain.Platform) (*domain.SyncResult, error) {
	adapter, err := s.registry.Get(platform)
	if err != nil {
		return nil, err
	}

	creds, err := s.creds.GetActiveCredentials(teamID, &platform)
	if err != nil {
		return nil, err
	}

	startedAt := time.Now()
	result := &domain.SyncResult{
		Platform:  platform,
		StartedAt: startedAt,
		Results:   []domain.AccountSyncResult{},
	}

	if len(creds) == 0 {
		logrus.WithFields(logrus.Fields{
			"team_id":  teamID,
			"platform": platform,
		}).Info("Nenhuma credencial ativa encontrada para sincronização")
		result.Success = true
		return result, nil
	}

	semaphore := make(chan struct{}, s.cfg.AccountConcurrency)
	results := make([]domain.AccountSyncResult, len(creds))
	var wg sync.WaitGroup

	for i, cred := range creds {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(idx int, cred *domain.PlatformCredential) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			// Sem tempo restante no lote: a conta é pulada, não falha
			if ctx.Err() != nil {
				results[idx] = domain.AccountSyncResult{
					CredentialID: cred.ID,
					AccountID:    cred.AccountID,
					AccountName:  cred.AccountName,
					Skipped:      true,
				}
				return
			}

			// Conta já iniciada termina o pipeline inteiro mesmo que o
			// prazo do lote expire no meio; abortar entre o upsert de
			// campanhas e o de métricas deixaria escrita parcial
			results[idx] = s.syncAccount(context.WithoutCancel(ctx), adapter, cred)
		}(i, cred)
	}

	wg.Wait()

	result.Results = results
	result.Success = true
	for _, r := range results {
		if !r.Success && !r.Skipped {
			result.Success = false
			break
		}
	}
	result.Duration = time.Since(startedAt)

	logrus.WithFields(logrus.Fields{
		"team_id":  teamID,
		"platform": platform,
		"accounts": len(creds),
		"success":  result.Success,
		"duration": result.Duration.String(),
	}).Info("Sincronização de plataforma concluída")

	return result, nil
}

// SyncAllPlatforms dispara a sincronização de cada plataforma com credenciais
// ativas do time. Plataformas rodam em paralelo; o lote é parcialmente
// bem-sucedido quando alguma conta falha
func (s *Service) SyncAllPlatforms(ctx context.Context, teamID string) (*domain.BatchResult, error) {
	activePlatforms, err := s.creds.ListActivePlatforms(teamID)
	if err != nil {
		return nil, err
	}

	batch := &domain.BatchResult{
		TeamID:  teamID,
		Success: true,
		Results: make(map[domain.Platform]*domain.SyncResult, len(activePlatforms)),
	}

	if len(activePlatforms) == 0 {
		return batch, nil
	}

	semaphore := make(chan struct{}, s.cfg.PlatformConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, platform := range activePlatforms {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(platform domain.Platform) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			result, err := s.SyncPlatform(ctx, teamID, platform)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"team_id":  teamID,
					"platform": platform,
				}).WithError(err).Error("Erro ao sincronizar plataforma")

				result = &domain.SyncResult{
					Platform: platform,
					Success:  false,
					Results: []domain.AccountSyncResult{
						{Success: false, Error: err.Error()},
					},
				}
			}

			mu.Lock()
			batch.Results[platform] = result
			if !result.Success {
				batch.Success = false
			}
			mu.Unlock()
		}(platform)
	}

	wg.Wait()

	return batch, nil
}

// syncAccount executa o pipeline completo de uma conta: token válido,
// campanhas, métricas e carimbo de sincronização
func (s *Service) syncAccount(ctx context.Context, adapter platforms.Adapter, cred *domain.PlatformCredential) domain.AccountSyncResult {
	result := domain.AccountSyncResult{
		CredentialID: cred.ID,
		AccountID:    cred.AccountID,
		AccountName:  cred.AccountName,
	}

	syncStartedAt := time.Now()
	syncType, window := s.windowFor(cred, syncStartedAt)
	result.SyncType = syncType

	accessToken, err := s.tokens.EnsureValidToken(ctx, cred)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"credential_id": cred.ID,
			"platform":      cred.Platform,
		}).WithError(err).Error("Erro ao garantir token válido para a conta")
		result.Error = err.Error()
		return result
	}
	cred.AccessToken = accessToken

	var fetched []*domain.Campaign
	err = s.policy.Do(ctx, func() error {
		var fetchErr error
		fetched, fetchErr = adapter.FetchCampaigns(ctx, cred)
		return fetchErr
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"credential_id": cred.ID,
			"platform":      cred.Platform,
		}).WithError(err).Error("Erro ao buscar campanhas da conta")
		result.Error = err.Error()
		return result
	}

	// externalID -> ID interno, para associar as métricas na sequência
	campaignIDs := make(map[string]string, len(fetched))
	externalIDs := make([]string, 0, len(fetched))
	for _, campaign := range fetched {
		saved, err := s.campaigns.Upsert(campaign)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"credential_id": cred.ID,
				"platform":      cred.Platform,
				"external_id":   campaign.ExternalID,
			}).WithError(err).Error("Erro ao salvar campanha")
			result.Error = err.Error()
			return result
		}

		campaignIDs[saved.ExternalID] = saved.ID
		externalIDs = append(externalIDs, saved.ExternalID)
		result.CampaignsProcessed++
	}

	var fetchedMetrics []*domain.CampaignMetric
	err = s.policy.Do(ctx, func() error {
		var fetchErr error
		fetchedMetrics, fetchErr = adapter.FetchMetrics(ctx, cred, externalIDs, window)
		return fetchErr
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"credential_id": cred.ID,
			"platform":      cred.Platform,
		}).WithError(err).Error("Erro ao buscar métricas da conta")
		result.Error = err.Error()
		return result
	}

	for _, metric := range fetchedMetrics {
		campaignID, ok := campaignIDs[metric.ExternalID]
		if !ok {
			// Métrica de campanha que não veio na listagem (ex.: excluída
			// durante a janela); sem linha de campanha não há onde ancorar
			continue
		}
		metric.CampaignID = campaignID

		if err := s.metrics.Upsert(metric); err != nil {
			logrus.WithFields(logrus.Fields{
				"credential_id": cred.ID,
				"campaign_id":   campaignID,
				"date":          metric.Date.Format(time.DateOnly),
			}).WithError(err).Error("Erro ao salvar métrica de campanha")
			result.Error = err.Error()
			return result
		}

		result.MetricsProcessed++
	}

	if err := s.creds.TouchSync(cred.ID, syncStartedAt); err != nil {
		logrus.WithFields(logrus.Fields{
			"credential_id": cred.ID,
		}).WithError(err).Warn("Erro ao atualizar o carimbo de sincronização")
	}

	result.Success = true

	logrus.WithFields(logrus.Fields{
		"credential_id": cred.ID,
		"platform":      cred.Platform,
		"sync_type":     syncType,
		"campaigns":     result.CampaignsProcessed,
		"metrics":       result.MetricsProcessed,
	}).Info("Conta sincronizada com sucesso")

	return result
}

// windowFor decide entre sincronização completa e incremental.
// Contas nunca sincronizadas, ou paradas há mais que o limiar de frescor,
// recebem a janela completa de lookback; as demais, apenas o intervalo
// desde a última sincronização
func (s *Service) windowFor(cred *domain.PlatformCredential, now time.Time) (domain.SyncType, domain.DateRange) {
	end := now

	if cred.LastSyncedAt == nil || now.Sub(*cred.LastSyncedAt) > s.cfg.FreshnessThreshold() {
		return domain.SyncTypeFull, domain.DateRange{
			Start: now.AddDate(0, 0, -s.cfg.LookbackDays),
			End:   end,
		}
	}

	return domain.SyncTypeIncremental, domain.DateRange{
		Start: *cred.LastSyncedAt,
		End:   end,
	}
}
