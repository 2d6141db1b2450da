package token

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/adpilot/campaign-sync-api/infrastructure/repository"
	"github.com/adpilot/campaign-sync-api/infrastructure/repository/mocks"
	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
	platformmocks "github.com/adpilot/campaign-sync-api/internal/platforms/mocks"
	"github.com/adpilot/campaign-sync-api/pkg/retry"
)

func stringPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func newTestCredential(expiresAt *time.Time) *domain.PlatformCredential {
	return &domain.PlatformCredential{
		ID:           "CRED001",
		TeamID:       "TEAM001",
		Platform:     domain.PlatformGoogle,
		AccountID:    "123-456-7890",
		AccessToken:  "access-antigo",
		RefreshToken: stringPtr("refresh-antigo"),
		ExpiresAt:    expiresAt,
		Active:       true,
	}
}

func TestRefresher_EnsureValidToken(t *testing.T) {
	buffer := 10 * time.Minute

	tests := []struct {
		name     string
		cred     *domain.PlatformCredential
		setup    func(creds *mocks.MockCredentialRepository, adapter *platformmocks.MockAdapter)
		validate func(t *testing.T, token string, err error)
	}{
		{
			name: "Token ainda válido - retorna sem renovar",
			cred: newTestCredential(timePtr(time.Now().Add(2 * time.Hour))),
			setup: func(creds *mocks.MockCredentialRepository, adapter *platformmocks.MockAdapter) {
				// Nenhuma chamada esperada: token longe do vencimento
			},
			validate: func(t *testing.T, token string, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "access-antigo", token)
			},
		},
		{
			name: "Token perto de expirar - renova e persiste os novos tokens",
			cred: newTestCredential(timePtr(time.Now().Add(2 * time.Minute))),
			setup: func(creds *mocks.MockCredentialRepository, adapter *platformmocks.MockAdapter) {
				fresh := newTestCredential(timePtr(time.Now().Add(2 * time.Minute)))
				creds.EXPECT().GetByID("CRED001").Return(fresh, nil)

				adapter.EXPECT().
					RefreshAccessToken(gomock.Any(), "refresh-antigo").
					Return(&domain.TokenSet{
						AccessToken:  "access-novo",
						RefreshToken: "refresh-novo",
						ExpiresAt:    timePtr(time.Now().Add(1 * time.Hour)),
					}, nil)

				creds.EXPECT().
					UpdateTokens("CRED001", gomock.Any(), gomock.Any()).
					DoAndReturn(func(id string, observed, next domain.TokenSet) error {
						assert.Equal(t, "access-antigo", observed.AccessToken)
						assert.Equal(t, "refresh-novo", next.RefreshToken)
						return nil
					})
			},
			validate: func(t *testing.T, token string, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "access-novo", token)
			},
		},
		{
			name: "Refresh token revogado - desativa a credencial",
			cred: newTestCredential(timePtr(time.Now().Add(-1 * time.Minute))),
			setup: func(creds *mocks.MockCredentialRepository, adapter *platformmocks.MockAdapter) {
				fresh := newTestCredential(timePtr(time.Now().Add(-1 * time.Minute)))
				creds.EXPECT().GetByID("CRED001").Return(fresh, nil)

				adapter.EXPECT().
					RefreshAccessToken(gomock.Any(), "refresh-antigo").
					Return(nil, &platforms.RefreshError{
						Platform: domain.PlatformGoogle,
						Reason:   "invalid_grant",
					})

				creds.EXPECT().MarkInactive("CRED001", gomock.Any()).Return(nil)
			},
			validate: func(t *testing.T, token string, err error) {
				assert.Error(t, err)
				assert.True(t, platforms.IsAuthRevoked(err))
				assert.Empty(t, token)
			},
		},
		{
			name: "Token expirado sem refresh token - desativa e exige reconexão",
			cred: newTestCredential(timePtr(time.Now().Add(-1 * time.Minute))),
			setup: func(creds *mocks.MockCredentialRepository, adapter *platformmocks.MockAdapter) {
				fresh := newTestCredential(timePtr(time.Now().Add(-1 * time.Minute)))
				fresh.RefreshToken = nil
				creds.EXPECT().GetByID("CRED001").Return(fresh, nil)
				creds.EXPECT().MarkInactive("CRED001", gomock.Any()).Return(nil)
			},
			validate: func(t *testing.T, token string, err error) {
				assert.Error(t, err)
				assert.True(t, platforms.IsAuthRevoked(err))
			},
		},
		{
			name: "Credencial desativada entre a decisão e a renovação - falha sem chamar a plataforma",
			cred: newTestCredential(timePtr(time.Now().Add(-1 * time.Minute))),
			setup: func(creds *mocks.MockCredentialRepository, adapter *platformmocks.MockAdapter) {
				fresh := newTestCredential(timePtr(time.Now().Add(-1 * time.Minute)))
				fresh.Active = false
				creds.EXPECT().GetByID("CRED001").Return(fresh, nil)
			},
			validate: func(t *testing.T, token string, err error) {
				assert.Error(t, err)
				assert.True(t, platforms.IsAuthRevoked(err))
			},
		},
		{
			name: "Outro processo renovou antes de entrar no flight - reaproveita o token relido",
			cred: newTestCredential(timePtr(time.Now().Add(2 * time.Minute))),
			setup: func(creds *mocks.MockCredentialRepository, adapter *platformmocks.MockAdapter) {
				fresh := newTestCredential(timePtr(time.Now().Add(3 * time.Hour)))
				fresh.AccessToken = "access-do-vencedor"
				creds.EXPECT().GetByID("CRED001").Return(fresh, nil)
			},
			validate: func(t *testing.T, token string, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "access-do-vencedor", token)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockCreds := mocks.NewMockCredentialRepository(ctrl)
			mockAdapter := platformmocks.NewMockAdapter(ctrl)
			mockAdapter.EXPECT().Platform().Return(domain.PlatformGoogle).AnyTimes()

			registry := platforms.NewRegistry(mockAdapter)
			refresher := NewRefresher(mockCreds, registry, nil, buffer, retry.DefaultPolicy(1))

			tt.setup(mockCreds, mockAdapter)

			token, err := refresher.EnsureValidToken(context.Background(), tt.cred)
			tt.validate(t, token, err)
		})
	}
}

func TestRefresher_EnsureValidToken_conflitoDeEscritaConcorrente(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	buffer := 10 * time.Minute
	mockCreds := mocks.NewMockCredentialRepository(ctrl)
	mockAdapter := platformmocks.NewMockAdapter(ctrl)
	mockAdapter.EXPECT().Platform().Return(domain.PlatformGoogle).AnyTimes()

	registry := platforms.NewRegistry(mockAdapter)
	refresher := NewRefresher(mockCreds, registry, nil, buffer, retry.DefaultPolicy(1))

	cred := newTestCredential(timePtr(time.Now().Add(2 * time.Minute)))

	// Releituras: a primeira ao entrar no flight, a segunda após o conflito.
	// O estado relido ainda está perto do vencimento, então a renovação
	// local é reaplicada sobre os tokens observados mais novos
	latest := newTestCredential(timePtr(time.Now().Add(2 * time.Minute)))
	latest.AccessToken = "access-intermediario"
	gomock.InOrder(
		mockCreds.EXPECT().GetByID("CRED001").Return(newTestCredential(timePtr(time.Now().Add(2*time.Minute))), nil),
		mockCreds.EXPECT().GetByID("CRED001").Return(latest, nil),
	)

	mockAdapter.EXPECT().
		RefreshAccessToken(gomock.Any(), "refresh-antigo").
		Return(&domain.TokenSet{
			AccessToken:  "access-novo",
			RefreshToken: "refresh-novo",
			ExpiresAt:    timePtr(time.Now().Add(1 * time.Hour)),
		}, nil)

	gomock.InOrder(
		mockCreds.EXPECT().
			UpdateTokens("CRED001", gomock.Any(), gomock.Any()).
			Return(repository.ErrConcurrentModification),
		mockCreds.EXPECT().
			UpdateTokens("CRED001", gomock.Any(), gomock.Any()).
			DoAndReturn(func(id string, observed, next domain.TokenSet) error {
				assert.Equal(t, "access-intermediario", observed.AccessToken)
				return nil
			}),
	)

	token, err := refresher.EnsureValidToken(context.Background(), cred)
	assert.NoError(t, err)
	assert.Equal(t, "access-novo", token)
}

func TestRefresher_EnsureValidToken_renovacaoSobreviveAoCancelamentoDoChamador(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	buffer := 10 * time.Minute
	mockCreds := mocks.NewMockCredentialRepository(ctrl)
	mockAdapter := platformmocks.NewMockAdapter(ctrl)
	mockAdapter.EXPECT().Platform().Return(domain.PlatformGoogle).AnyTimes()

	registry := platforms.NewRegistry(mockAdapter)
	refresher := NewRefresher(mockCreds, registry, nil, buffer, retry.DefaultPolicy(1))

	mockCreds.EXPECT().
		GetByID("CRED001").
		Return(newTestCredential(timePtr(time.Now().Add(2*time.Minute))), nil)

	// A chamada à plataforma recebe um contexto ainda vivo mesmo com o
	// chamador já cancelado; o adapter real abortaria a requisição HTTP
	// com um contexto cancelado e o token rotacionado se perderia
	mockAdapter.EXPECT().
		RefreshAccessToken(gomock.Any(), "refresh-antigo").
		DoAndReturn(func(callCtx context.Context, refreshToken string) (*domain.TokenSet, error) {
			assert.NoError(t, callCtx.Err())
			return &domain.TokenSet{
				AccessToken:  "access-novo",
				RefreshToken: "refresh-rotacionado",
				ExpiresAt:    timePtr(time.Now().Add(1 * time.Hour)),
			}, nil
		})

	mockCreds.EXPECT().
		UpdateTokens("CRED001", gomock.Any(), gomock.Any()).
		DoAndReturn(func(id string, observed, next domain.TokenSet) error {
			assert.Equal(t, "refresh-rotacionado", next.RefreshToken)
			return nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	token, err := refresher.EnsureValidToken(ctx, newTestCredential(timePtr(time.Now().Add(2*time.Minute))))
	assert.NoError(t, err)
	assert.Equal(t, "access-novo", token)
}

func TestRefresher_EnsureValidToken_coalesceRenovacoesConcorrentes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	buffer := 10 * time.Minute
	mockCreds := mocks.NewMockCredentialRepository(ctrl)
	mockAdapter := platformmocks.NewMockAdapter(ctrl)
	mockAdapter.EXPECT().Platform().Return(domain.PlatformGoogle).AnyTimes()

	registry := platforms.NewRegistry(mockAdapter)
	refresher := NewRefresher(mockCreds, registry, nil, buffer, retry.DefaultPolicy(1))

	mockCreds.EXPECT().
		GetByID("CRED001").
		Return(newTestCredential(timePtr(time.Now().Add(2*time.Minute))), nil).
		Times(1)

	// A renovação segura o flight aberto até todos os chamadores entrarem;
	// só então libera, garantindo que compartilham a mesma execução
	release := make(chan struct{})
	mockAdapter.EXPECT().
		RefreshAccessToken(gomock.Any(), "refresh-antigo").
		DoAndReturn(func(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
			<-release
			return &domain.TokenSet{
				AccessToken:  "access-novo",
				RefreshToken: "refresh-novo",
				ExpiresAt:    timePtr(time.Now().Add(1 * time.Hour)),
			}, nil
		}).
		Times(1)

	mockCreds.EXPECT().
		UpdateTokens("CRED001", gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			cred := newTestCredential(timePtr(time.Now().Add(2 * time.Minute)))
			results[idx], errs[idx] = refresher.EnsureValidToken(context.Background(), cred)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.NoError(t, errs[i])
		assert.Equal(t, "access-novo", results[i])
	}
}
