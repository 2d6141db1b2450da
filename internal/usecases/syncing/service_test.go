package syncing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/adpilot/campaign-sync-api/infrastructure/repository/mocks"
	"github.com/adpilot/campaign-sync-api/internal/config"
	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
	platformmocks "github.com/adpilot/campaign-sync-api/internal/platforms/mocks"
)

type staticTokens struct{}

func (staticTokens) EnsureValidToken(ctx context.Context, cred *domain.PlatformCredential) (string, error) {
	return cred.AccessToken, nil
}

func testSyncConfig() config.Sync {
	return config.Sync{
		FreshnessHours:      12,
		LookbackDays:        30,
		AccountConcurrency:  1,
		PlatformConcurrency: 1,
		RetryMaxAttempts:    1,
	}
}

func stringPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func testCredential(id, accountID string) *domain.PlatformCredential {
	return &domain.PlatformCredential{
		ID:           id,
		TeamID:       "TEAM001",
		Platform:     domain.PlatformGoogle,
		AccountID:    accountID,
		AccessToken:  "access-" + id,
		RefreshToken: stringPtr("refresh-" + id),
		Active:       true,
	}
}

func TestService_SyncPlatform_falhaDeUmaContaNaoInterrompeAsDemais(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCreds := mocks.NewMockCredentialRepository(ctrl)
	mockCampaigns := mocks.NewMockCampaignRepository(ctrl)
	mockMetrics := mocks.NewMockMetricRepository(ctrl)
	mockAdapter := platformmocks.NewMockAdapter(ctrl)
	mockAdapter.EXPECT().Platform().Return(domain.PlatformGoogle).AnyTimes()

	registry := platforms.NewRegistry(mockAdapter)
	service := NewService(mockCreds, mockCampaigns, mockMetrics, registry, staticTokens{}, testSyncConfig())

	platform := domain.PlatformGoogle
	creds := []*domain.PlatformCredential{
		testCredential("CRED001", "111"),
		testCredential("CRED002", "222"),
		testCredential("CRED003", "333"),
	}

	mockCreds.EXPECT().
		GetActiveCredentials("TEAM001", &platform).
		Return(creds, nil)

	// A conta do meio falha com erro permanente; as outras concluem normalmente
	mockAdapter.EXPECT().
		FetchCampaigns(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, cred *domain.PlatformCredential) ([]*domain.Campaign, error) {
			if cred.ID == "CRED002" {
				return nil, &platforms.PlatformAPIError{
					Platform:   domain.PlatformGoogle,
					StatusCode: 403,
					Body:       "conta suspensa",
				}
			}
			return []*domain.Campaign{
				{
					TeamID:       cred.TeamID,
					Platform:     cred.Platform,
					ExternalID:   "EXT-" + cred.ID,
					CredentialID: cred.ID,
					Name:         "Campanha " + cred.AccountID,
					Status:       domain.CampaignStatusActive,
					Budget:       100,
					Currency:     "BRL",
				},
			}, nil
		}).
		Times(3)

	mockCampaigns.EXPECT().
		Upsert(gomock.Any()).
		DoAndReturn(func(campaign *domain.Campaign) (*domain.Campaign, error) {
			saved := *campaign
			saved.ID = "CAMP-" + campaign.CredentialID
			return &saved, nil
		}).
		Times(2)

	mockAdapter.EXPECT().
		FetchMetrics(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, cred *domain.PlatformCredential, campaignIDs []string, window domain.DateRange) ([]*domain.CampaignMetric, error) {
			return []*domain.CampaignMetric{
				{
					ExternalID:  "EXT-" + cred.ID,
					Date:        time.Now().Truncate(24 * time.Hour),
					Impressions: 1000,
					Clicks:      50,
					Cost:        12.5,
				},
			}, nil
		}).
		Times(2)

	mockMetrics.EXPECT().Upsert(gomock.Any()).Return(nil).Times(2)
	mockCreds.EXPECT().TouchSync(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	result, err := service.SyncPlatform(context.Background(), "TEAM001", platform)

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Len(t, result.Results, 3)

	assert.True(t, result.Results[0].Success)
	assert.Equal(t, 1, result.Results[0].CampaignsProcessed)
	assert.Equal(t, 1, result.Results[0].MetricsProcessed)

	assert.False(t, result.Results[1].Success)
	assert.False(t, result.Results[1].Skipped)
	assert.Contains(t, result.Results[1].Error, "conta suspensa")

	assert.True(t, result.Results[2].Success)
}

func TestService_SyncPlatform_metricaSemCampanhaCorrespondenteEIgnorada(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCreds := mocks.NewMockCredentialRepository(ctrl)
	mockCampaigns := mocks.NewMockCampaignRepository(ctrl)
	mockMetrics := mocks.NewMockMetricRepository(ctrl)
	mockAdapter := platformmocks.NewMockAdapter(ctrl)
	mockAdapter.EXPECT().Platform().Return(domain.PlatformGoogle).AnyTimes()

	registry := platforms.NewRegistry(mockAdapter)
	service := NewService(mockCreds, mockCampaigns, mockMetrics, registry, staticTokens{}, testSyncConfig())

	platform := domain.PlatformGoogle
	mockCreds.EXPECT().
		GetActiveCredentials("TEAM001", &platform).
		Return([]*domain.PlatformCredential{testCredential("CRED001", "111")}, nil)

	mockAdapter.EXPECT().
		FetchCampaigns(gomock.Any(), gomock.Any()).
		Return([]*domain.Campaign{
			{ExternalID: "EXT001", Name: "Campanha conhecida"},
		}, nil)

	mockCampaigns.EXPECT().
		Upsert(gomock.Any()).
		DoAndReturn(func(campaign *domain.Campaign) (*domain.Campaign, error) {
			saved := *campaign
			saved.ID = "CAMP001"
			return &saved, nil
		})

	mockAdapter.EXPECT().
		FetchMetrics(gomock.Any(), gomock.Any(), []string{"EXT001"}, gomock.Any()).
		Return([]*domain.CampaignMetric{
			{ExternalID: "EXT001", Date: time.Now()},
			{ExternalID: "EXT-DESCONHECIDO", Date: time.Now()},
		}, nil)

	// Apenas a métrica com campanha correspondente é persistida
	mockMetrics.EXPECT().
		Upsert(gomock.Any()).
		DoAndReturn(func(metric *domain.CampaignMetric) error {
			assert.Equal(t, "CAMP001", metric.CampaignID)
			return nil
		}).
		Times(1)

	mockCreds.EXPECT().TouchSync("CRED001", gomock.Any()).Return(nil)

	result, err := service.SyncPlatform(context.Background(), "TEAM001", platform)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Results[0].MetricsProcessed)
}

func TestService_SyncPlatform_contextoEsgotadoPulaAsContasRestantes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCreds := mocks.NewMockCredentialRepository(ctrl)
	mockCampaigns := mocks.NewMockCampaignRepository(ctrl)
	mockMetrics := mocks.NewMockMetricRepository(ctrl)
	mockAdapter := platformmocks.NewMockAdapter(ctrl)
	mockAdapter.EXPECT().Platform().Return(domain.PlatformGoogle).AnyTimes()

	registry := platforms.NewRegistry(mockAdapter)
	service := NewService(mockCreds, mockCampaigns, mockMetrics, registry, staticTokens{}, testSyncConfig())

	platform := domain.PlatformGoogle
	mockCreds.EXPECT().
		GetActiveCredentials("TEAM001", &platform).
		Return([]*domain.PlatformCredential{
			testCredential("CRED001", "111"),
			testCredential("CRED002", "222"),
		}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := service.SyncPlatform(ctx, "TEAM001", platform)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	for _, r := range result.Results {
		assert.True(t, r.Skipped)
		assert.False(t, r.Success)
		assert.Empty(t, r.Error)
	}
}

func TestService_SyncPlatform_contaIniciadaTerminaAposOPrazoExpirar(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCreds := mocks.NewMockCredentialRepository(ctrl)
	mockCampaigns := mocks.NewMockCampaignRepository(ctrl)
	mockMetrics := mocks.NewMockMetricRepository(ctrl)
	mockAdapter := platformmocks.NewMockAdapter(ctrl)
	mockAdapter.EXPECT().Platform().Return(domain.PlatformGoogle).AnyTimes()

	registry := platforms.NewRegistry(mockAdapter)
	service := NewService(mockCreds, mockCampaigns, mockMetrics, registry, staticTokens{}, testSyncConfig())

	platform := domain.PlatformGoogle
	mockCreds.EXPECT().
		GetActiveCredentials("TEAM001", &platform).
		Return([]*domain.PlatformCredential{
			testCredential("CRED001", "111"),
			testCredential("CRED002", "222"),
		}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// O prazo do lote expira durante a primeira conta. O pipeline dela
	// deve seguir até o fim (as chamadas HTTP honram o contexto, então um
	// contexto cancelado abortaria a busca de métricas); a segunda conta,
	// ainda não iniciada, é pulada
	mockAdapter.EXPECT().
		FetchCampaigns(gomock.Any(), gomock.Any()).
		DoAndReturn(func(callCtx context.Context, cred *domain.PlatformCredential) ([]*domain.Campaign, error) {
			cancel()
			return []*domain.Campaign{
				{ExternalID: "EXT001", Name: "Campanha em andamento"},
			}, nil
		})

	mockCampaigns.EXPECT().
		Upsert(gomock.Any()).
		DoAndReturn(func(campaign *domain.Campaign) (*domain.Campaign, error) {
			saved := *campaign
			saved.ID = "CAMP001"
			return &saved, nil
		})

	mockAdapter.EXPECT().
		FetchMetrics(gomock.Any(), gomock.Any(), []string{"EXT001"}, gomock.Any()).
		DoAndReturn(func(callCtx context.Context, cred *domain.PlatformCredential, campaignIDs []string, window domain.DateRange) ([]*domain.CampaignMetric, error) {
			if callCtx.Err() != nil {
				return nil, callCtx.Err()
			}
			return []*domain.CampaignMetric{
				{ExternalID: "EXT001", Date: time.Now()},
			}, nil
		})

	mockMetrics.EXPECT().Upsert(gomock.Any()).Return(nil)
	mockCreds.EXPECT().TouchSync("CRED001", gomock.Any()).Return(nil)

	result, err := service.SyncPlatform(ctx, "TEAM001", platform)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Results, 2)

	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[0].Skipped)
	assert.Equal(t, 1, result.Results[0].CampaignsProcessed)
	assert.Equal(t, 1, result.Results[0].MetricsProcessed)

	assert.True(t, result.Results[1].Skipped)
	assert.False(t, result.Results[1].Success)
	assert.Empty(t, result.Results[1].Error)
}

func TestService_SyncAllPlatforms_loteParcialmenteBemSucedido(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCreds := mocks.NewMockCredentialRepository(ctrl)
	mockCampaigns := mocks.NewMockCampaignRepository(ctrl)
	mockMetrics := mocks.NewMockMetricRepository(ctrl)

	// Apenas o adapter do Google está registrado; a plataforma Kakao do time
	// falha na resolução e vira um resultado de falha no lote
	mockAdapter := platformmocks.NewMockAdapter(ctrl)
	mockAdapter.EXPECT().Platform().Return(domain.PlatformGoogle).AnyTimes()

	registry := platforms.NewRegistry(mockAdapter)
	service := NewService(mockCreds, mockCampaigns, mockMetrics, registry, staticTokens{}, testSyncConfig())

	mockCreds.EXPECT().
		ListActivePlatforms("TEAM001").
		Return([]domain.Platform{domain.PlatformGoogle, domain.PlatformKakao}, nil)

	google := domain.PlatformGoogle
	mockCreds.EXPECT().
		GetActiveCredentials("TEAM001", &google).
		Return([]*domain.PlatformCredential{}, nil)

	batch, err := service.SyncAllPlatforms(context.Background(), "TEAM001")

	assert.NoError(t, err)
	assert.False(t, batch.Success)
	assert.Len(t, batch.Results, 2)
	assert.True(t, batch.Results[domain.PlatformGoogle].Success)
	assert.False(t, batch.Results[domain.PlatformKakao].Success)
	assert.Contains(t, batch.Results[domain.PlatformKakao].Results[0].Error, "plataforma não suportada")
}

func TestService_windowFor(t *testing.T) {
	service := &Service{cfg: testSyncConfig()}
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		lastSyncedAt *time.Time
		wantType     domain.SyncType
		wantStart    time.Time
	}{
		{
			name:         "Conta nunca sincronizada - janela completa de lookback",
			lastSyncedAt: nil,
			wantType:     domain.SyncTypeFull,
			wantStart:    now.AddDate(0, 0, -30),
		},
		{
			name:         "Última sincronização além do limiar de frescor - janela completa",
			lastSyncedAt: timePtr(now.Add(-13 * time.Hour)),
			wantType:     domain.SyncTypeFull,
			wantStart:    now.AddDate(0, 0, -30),
		},
		{
			name:         "Última sincronização recente - janela incremental",
			lastSyncedAt: timePtr(now.Add(-2 * time.Hour)),
			wantType:     domain.SyncTypeIncremental,
			wantStart:    now.Add(-2 * time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred := testCredential("CRED001", "111")
			cred.LastSyncedAt = tt.lastSyncedAt

			syncType, window := service.windowFor(cred, now)

			assert.Equal(t, tt.wantType, syncType)
			assert.Equal(t, tt.wantStart, window.Start)
			assert.Equal(t, now, window.End)
		})
	}
}
