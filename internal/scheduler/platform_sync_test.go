package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/adpilot/campaign-sync-api/infrastructure/repository/mocks"
	"github.com/adpilot/campaign-sync-api/internal/config"
	"github.com/adpilot/campaign-sync-api/internal/domain"
)

type slowSyncer struct {
	delay time.Duration
}

func (s slowSyncer) SyncPlatform(ctx context.Context, teamID string, platform domain.Platform) (*domain.SyncResult, error) {
	return &domain.SyncResult{Platform: platform, Success: true}, nil
}

func (s slowSyncer) SyncAllPlatforms(ctx context.Context, teamID string) (*domain.BatchResult, error) {
	time.Sleep(s.delay)
	return &domain.BatchResult{TeamID: teamID, Success: true}, nil
}

func newTestPlatformSyncService(creds *mocks.MockCredentialRepository, syncer slowSyncer) *PlatformSyncService {
	return NewPlatformSyncService(creds, syncer, &config.Config{
		Trigger: config.Trigger{
			CronSchedule:      "0 */6 * * *",
			Enabled:           false,
			RunTimeoutMinutes: 1,
		},
	})
}

func TestPlatformSyncService_GetStatusDuranteUmaExecucao(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCreds := mocks.NewMockCredentialRepository(ctrl)
	mockCreds.EXPECT().
		ListTeamsWithActiveCredentials().
		Return([]string{"TEAM001", "TEAM002"}, nil)

	service := newTestPlatformSyncService(mockCreds, slowSyncer{delay: 20 * time.Millisecond})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		service.syncAllTeams(context.Background())
	}()

	// Leituras de status concorrentes com a execução em andamento
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		service.GetStatus()
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	status := service.GetStatus()
	assert.False(t, status["sync_running"].(bool))
	assert.False(t, status["last_sync_started_at"].(time.Time).IsZero())
	assert.False(t, status["last_sync_completed_at"].(time.Time).IsZero())
	startedAt := status["last_sync_started_at"].(time.Time)
	completedAt := status["last_sync_completed_at"].(time.Time)
	assert.False(t, completedAt.Before(startedAt))
}

func TestPlatformSyncService_execucoesSobrepostasSaoIgnoradas(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCreds := mocks.NewMockCredentialRepository(ctrl)
	// Apenas a primeira execução chega a listar os times
	mockCreds.EXPECT().
		ListTeamsWithActiveCredentials().
		Return([]string{"TEAM001"}, nil).
		Times(1)

	service := newTestPlatformSyncService(mockCreds, slowSyncer{delay: 50 * time.Millisecond})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		service.syncAllTeams(context.Background())
	}()

	// Espera a primeira execução marcar o estado de andamento
	assert.Eventually(t, func() bool {
		return service.GetStatus()["sync_running"].(bool)
	}, 1*time.Second, 5*time.Millisecond)

	service.syncAllTeams(context.Background())
	wg.Wait()
}
