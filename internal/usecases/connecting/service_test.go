package connecting

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

func timePtr(t time.Time) *time.Time {
	return &t
}

func newTestService(ctrl *gomock.Controller) (*Service, *mocks.MockCredentialRepository, *mocks.MockCampaignRepository, *platformmocks.MockAdapter) {
	mockCreds := mocks.NewMockCredentialRepository(ctrl)
	mockCampaigns := mocks.NewMockCampaignRepository(ctrl)
	mockAdapter := platformmocks.NewMockAdapter(ctrl)
	mockAdapter.EXPECT().Platform().Return(domain.PlatformGoogle).AnyTimes()

	registry := platforms.NewRegistry(mockAdapter)
	service := &Service{
		creds:     mockCreds,
		campaigns: mockCampaigns,
		registry:  registry,
	}

	return service, mockCreds, mockCampaigns, mockAdapter
}

func TestService_Connect(t *testing.T) {
	tests := []struct {
		name     string
		req      *ConnectRequest
		setup    func(creds *mocks.MockCredentialRepository, adapter *platformmocks.MockAdapter)
		validate func(t *testing.T, cred *domain.PlatformCredential, err error)
	}{
		{
			name: "Conexão bem-sucedida persiste a credencial ativa",
			req: &ConnectRequest{
				TeamID:      "TEAM001",
				Platform:    "google",
				AuthCode:    "codigo-valido",
				AccountID:   "123-456-7890",
				AccountName: "Conta principal",
			},
			setup: func(creds *mocks.MockCredentialRepository, adapter *platformmocks.MockAdapter) {
				adapter.EXPECT().
					ExchangeCode(gomock.Any(), "codigo-valido").
					Return(&domain.TokenSet{
						AccessToken:  "access-novo",
						RefreshToken: "refresh-novo",
						ExpiresAt:    timePtr(time.Now().Add(1 * time.Hour)),
					}, nil)

				creds.EXPECT().
					Save(gomock.Any()).
					DoAndReturn(func(cred *domain.PlatformCredential) (*domain.PlatformCredential, error) {
						assert.True(t, cred.Active)
						assert.Equal(t, "TEAM001", cred.TeamID)
						assert.Equal(t, "access-novo", cred.AccessToken)
						if assert.NotNil(t, cred.RefreshToken) {
							assert.Equal(t, "refresh-novo", *cred.RefreshToken)
						}

						saved := *cred
						saved.ID = "CRED001"
						return &saved, nil
					})
			},
			validate: func(t *testing.T, cred *domain.PlatformCredential, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "CRED001", cred.ID)
			},
		},
		{
			name: "Código de autorização ausente - falha de validação",
			req: &ConnectRequest{
				TeamID:    "TEAM001",
				Platform:  "google",
				AccountID: "123-456-7890",
			},
			setup: func(creds *mocks.MockCredentialRepository, adapter *platformmocks.MockAdapter) {},
			validate: func(t *testing.T, cred *domain.PlatformCredential, err error) {
				var validation *platforms.ValidationError
				assert.ErrorAs(t, err, &validation)
				assert.Equal(t, "auth_code", validation.Field)
			},
		},
		{
			name: "Plataforma desconhecida - falha de validação",
			req: &ConnectRequest{
				TeamID:    "TEAM001",
				Platform:  "orkut",
				AuthCode:  "codigo-valido",
				AccountID: "123-456-7890",
			},
			setup: func(creds *mocks.MockCredentialRepository, adapter *platformmocks.MockAdapter) {},
			validate: func(t *testing.T, cred *domain.PlatformCredential, err error) {
				var validation *platforms.ValidationError
				assert.ErrorAs(t, err, &validation)
				assert.Equal(t, "platform", validation.Field)
			},
		},
		{
			name: "Código inválido na plataforma - propaga o erro de autorização",
			req: &ConnectRequest{
				TeamID:    "TEAM001",
				Platform:  "google",
				AuthCode:  "codigo-expirado",
				AccountID: "123-456-7890",
			},
			setup: func(creds *mocks.MockCredentialRepository, adapter *platformmocks.MockAdapter) {
				adapter.EXPECT().
					ExchangeCode(gomock.Any(), "codigo-expirado").
					Return(nil, &platforms.AuthError{
						Platform: domain.PlatformGoogle,
						Code:     "invalid_grant",
						Message:  "código expirado",
					})
			},
			validate: func(t *testing.T, cred *domain.PlatformCredential, err error) {
				var authErr *platforms.AuthError
				assert.ErrorAs(t, err, &authErr)
				assert.Nil(t, cred)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service, mockCreds, _, mockAdapter := newTestService(ctrl)
			tt.setup(mockCreds, mockAdapter)

			cred, err := service.Connect(context.Background(), tt.req)
			tt.validate(t, cred, err)
		})
	}
}

func TestService_Disconnect(t *testing.T) {
	existing := &domain.PlatformCredential{
		ID:       "CRED001",
		TeamID:   "TEAM001",
		Platform: domain.PlatformGoogle,
		Active:   true,
	}

	t.Run("Desconexão sem purge apenas desativa a credencial", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, mockCreds, _, _ := newTestService(ctrl)

		mockCreds.EXPECT().GetByID("CRED001").Return(existing, nil)
		mockCreds.EXPECT().MarkInactive("CRED001", "desconectada pelo usuário").Return(nil)

		err := service.Disconnect(context.Background(), "TEAM001", "CRED001", false)
		assert.NoError(t, err)
	})

	t.Run("Desconexão com purge remove as campanhas da plataforma", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, mockCreds, mockCampaigns, _ := newTestService(ctrl)

		mockCreds.EXPECT().GetByID("CRED001").Return(existing, nil)
		mockCreds.EXPECT().MarkInactive("CRED001", "desconectada pelo usuário").Return(nil)
		mockCampaigns.EXPECT().
			DeleteByTeamAndPlatform("TEAM001", domain.PlatformGoogle).
			Return(int64(7), nil)

		err := service.Disconnect(context.Background(), "TEAM001", "CRED001", true)
		assert.NoError(t, err)
	})

	t.Run("Credencial de outro time - não encontrada", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, mockCreds, _, _ := newTestService(ctrl)

		other := &domain.PlatformCredential{ID: "CRED001", TeamID: "TEAM999"}
		mockCreds.EXPECT().GetByID("CRED001").Return(other, nil)

		err := service.Disconnect(context.Background(), "TEAM001", "CRED001", false)
		assert.ErrorIs(t, err, ErrCredentialNotFound)
	})
}
