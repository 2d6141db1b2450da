package managing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/adpilot/campaign-sync-api/infrastructure/repository/mocks"
	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
	platformmocks "github.com/adpilot/campaign-sync-api/internal/platforms/mocks"
)

type staticTokens struct{}

func (staticTokens) EnsureValidToken(ctx context.Context, cred *domain.PlatformCredential) (string, error) {
	return cred.AccessToken, nil
}

func stringPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func testCampaign() *domain.Campaign {
	return &domain.Campaign{
		ID:           "CAMP001",
		TeamID:       "TEAM001",
		Platform:     domain.PlatformGoogle,
		ExternalID:   "987654",
		CredentialID: "CRED001",
		Name:         "Campanha de verão",
		Status:       domain.CampaignStatusActive,
		Budget:       100,
		Currency:     "BRL",
	}
}

func testActiveCredential() *domain.PlatformCredential {
	return &domain.PlatformCredential{
		ID:           "CRED001",
		TeamID:       "TEAM001",
		Platform:     domain.PlatformGoogle,
		AccountID:    "123-456-7890",
		AccessToken:  "access-valido",
		RefreshToken: stringPtr("refresh-valido"),
		ExpiresAt:    timePtr(time.Now().Add(1 * time.Hour)),
		Active:       true,
	}
}

func newTestService(ctrl *gomock.Controller) (*Service, *mocks.MockCredentialRepository, *mocks.MockCampaignRepository, *mocks.MockMetricRepository, *platformmocks.MockAdapter) {
	mockCreds := mocks.NewMockCredentialRepository(ctrl)
	mockCampaigns := mocks.NewMockCampaignRepository(ctrl)
	mockMetrics := mocks.NewMockMetricRepository(ctrl)
	mockAdapter := platformmocks.NewMockAdapter(ctrl)
	mockAdapter.EXPECT().Platform().Return(domain.PlatformGoogle).AnyTimes()

	registry := platforms.NewRegistry(mockAdapter)
	service := &Service{
		creds:     mockCreds,
		campaigns: mockCampaigns,
		metrics:   mockMetrics,
		registry:  registry,
		tokens:    staticTokens{},
	}

	return service, mockCreds, mockCampaigns, mockMetrics, mockAdapter
}

func TestService_UpdateBudget(t *testing.T) {
	tests := []struct {
		name     string
		budget   float64
		setup    func(creds *mocks.MockCredentialRepository, campaigns *mocks.MockCampaignRepository, adapter *platformmocks.MockAdapter)
		validate func(t *testing.T, saved *domain.Campaign, err error)
	}{
		{
			name:   "Orçamento aplicado na plataforma e refletido localmente",
			budget: 250,
			setup: func(creds *mocks.MockCredentialRepository, campaigns *mocks.MockCampaignRepository, adapter *platformmocks.MockAdapter) {
				campaigns.EXPECT().GetByID("CAMP001").Return(testCampaign(), nil)
				creds.EXPECT().GetByID("CRED001").Return(testActiveCredential(), nil)

				adapter.EXPECT().
					UpdateCampaignBudget(gomock.Any(), gomock.Any(), "987654", 250.0).
					Return(true, nil)

				campaigns.EXPECT().
					Upsert(gomock.Any()).
					DoAndReturn(func(campaign *domain.Campaign) (*domain.Campaign, error) {
						assert.Equal(t, 250.0, campaign.Budget)
						return campaign, nil
					})
			},
			validate: func(t *testing.T, saved *domain.Campaign, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 250.0, saved.Budget)
			},
		},
		{
			name:   "Orçamento inválido - falha antes de chamar a plataforma",
			budget: 0,
			setup: func(creds *mocks.MockCredentialRepository, campaigns *mocks.MockCampaignRepository, adapter *platformmocks.MockAdapter) {
			},
			validate: func(t *testing.T, saved *domain.Campaign, err error) {
				var validation *platforms.ValidationError
				assert.ErrorAs(t, err, &validation)
				assert.Equal(t, "budget", validation.Field)
			},
		},
		{
			name:   "Rejeição bem-formada da plataforma - não persiste localmente",
			budget: 1,
			setup: func(creds *mocks.MockCredentialRepository, campaigns *mocks.MockCampaignRepository, adapter *platformmocks.MockAdapter) {
				campaigns.EXPECT().GetByID("CAMP001").Return(testCampaign(), nil)
				creds.EXPECT().GetByID("CRED001").Return(testActiveCredential(), nil)

				adapter.EXPECT().
					UpdateCampaignBudget(gomock.Any(), gomock.Any(), "987654", 1.0).
					Return(false, nil)
			},
			validate: func(t *testing.T, saved *domain.Campaign, err error) {
				assert.ErrorIs(t, err, ErrRejectedByPlatform)
				assert.Nil(t, saved)
			},
		},
		{
			name:   "Campanha de outro time - não encontrada",
			budget: 100,
			setup: func(creds *mocks.MockCredentialRepository, campaigns *mocks.MockCampaignRepository, adapter *platformmocks.MockAdapter) {
				other := testCampaign()
				other.TeamID = "TEAM999"
				campaigns.EXPECT().GetByID("CAMP001").Return(other, nil)
			},
			validate: func(t *testing.T, saved *domain.Campaign, err error) {
				assert.ErrorIs(t, err, ErrCampaignNotFound)
			},
		},
		{
			name:   "Credencial desativada - exige reconexão",
			budget: 100,
			setup: func(creds *mocks.MockCredentialRepository, campaigns *mocks.MockCampaignRepository, adapter *platformmocks.MockAdapter) {
				campaigns.EXPECT().GetByID("CAMP001").Return(testCampaign(), nil)

				inactive := testActiveCredential()
				inactive.Active = false
				creds.EXPECT().GetByID("CRED001").Return(inactive, nil)
			},
			validate: func(t *testing.T, saved *domain.Campaign, err error) {
				assert.True(t, platforms.IsAuthRevoked(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service, mockCreds, mockCampaigns, _, mockAdapter := newTestService(ctrl)
			tt.setup(mockCreds, mockCampaigns, mockAdapter)

			saved, err := service.UpdateBudget(context.Background(), "TEAM001", "CAMP001", tt.budget)
			tt.validate(t, saved, err)
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		active   bool
		campaign *domain.Campaign
		setup    func(creds *mocks.MockCredentialRepository, campaigns *mocks.MockCampaignRepository, adapter *platformmocks.MockAdapter, campaign *domain.Campaign)
		validate func(t *testing.T, saved *domain.Campaign, err error)
	}{
		{
			name:     "Pausar campanha ativa",
			active:   false,
			campaign: testCampaign(),
			setup: func(creds *mocks.MockCredentialRepository, campaigns *mocks.MockCampaignRepository, adapter *platformmocks.MockAdapter, campaign *domain.Campaign) {
				campaigns.EXPECT().GetByID("CAMP001").Return(campaign, nil)
				creds.EXPECT().GetByID("CRED001").Return(testActiveCredential(), nil)

				adapter.EXPECT().
					UpdateCampaignStatus(gomock.Any(), gomock.Any(), "987654", false).
					Return(true, nil)

				campaigns.EXPECT().
					Upsert(gomock.Any()).
					DoAndReturn(func(c *domain.Campaign) (*domain.Campaign, error) {
						return c, nil
					})
			},
			validate: func(t *testing.T, saved *domain.Campaign, err error) {
				assert.NoError(t, err)
				assert.Equal(t, domain.CampaignStatusPaused, saved.Status)
			},
		},
		{
			name:   "Campanha removida não pode ser reativada",
			active: true,
			campaign: func() *domain.Campaign {
				c := testCampaign()
				c.Status = domain.CampaignStatusRemoved
				return c
			}(),
			setup: func(creds *mocks.MockCredentialRepository, campaigns *mocks.MockCampaignRepository, adapter *platformmocks.MockAdapter, campaign *domain.Campaign) {
				campaigns.EXPECT().GetByID("CAMP001").Return(campaign, nil)
				creds.EXPECT().GetByID("CRED001").Return(testActiveCredential(), nil)
			},
			validate: func(t *testing.T, saved *domain.Campaign, err error) {
				var validation *platforms.ValidationError
				assert.ErrorAs(t, err, &validation)
				assert.Equal(t, "status", validation.Field)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service, mockCreds, mockCampaigns, _, mockAdapter := newTestService(ctrl)
			tt.setup(mockCreds, mockCampaigns, mockAdapter, tt.campaign)

			saved, err := service.UpdateStatus(context.Background(), "TEAM001", "CAMP001", tt.active)
			tt.validate(t, saved, err)
		})
	}
}

func TestService_GetCampaignMetrics_validaPosseAntesDeLer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, _, mockCampaigns, mockMetrics, _ := newTestService(ctrl)

	window := domain.DateRange{
		Start: time.Now().AddDate(0, 0, -7),
		End:   time.Now(),
	}

	mockCampaigns.EXPECT().GetByID("CAMP001").Return(testCampaign(), nil)
	mockMetrics.EXPECT().
		GetByCampaignAndRange("CAMP001", window).
		Return([]*domain.CampaignMetric{{CampaignID: "CAMP001"}}, nil)

	metrics, err := service.GetCampaignMetrics("TEAM001", "CAMP001", window)
	assert.NoError(t, err)
	assert.Len(t, metrics, 1)

	mockCampaigns.EXPECT().GetByID("CAMP404").Return(nil, nil)
	_, err = service.GetCampaignMetrics("TEAM001", "CAMP404", window)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}
