package platforms

import (
	"context"
	"fmt"

	"github.com/adpilot/campaign-sync-api/internal/domain"
)

// Adapter é a interface de capacidades que cada plataforma implementa.
// Cada adapter é responsável por mapear nomes de campos e unidades da
// plataforma (ex.: micros de moeda) para os tipos normalizados — o
// orquestrador não contém branches por plataforma
type Adapter interface {
	Platform() domain.Platform

	// ExchangeCode troca um código de autorização por tokens.
	// Falha com *AuthError quando o código é inválido ou expirado
	ExchangeCode(ctx context.Context, authCode string) (*domain.TokenSet, error)

	// RefreshAccessToken troca um refresh token por um novo access token.
	// Quando a plataforma rotaciona o refresh token, o novo é retornado;
	// caso contrário o token de entrada é devolvido inalterado.
	// Falha com *RefreshError em respostas invalid_grant/token revogado
	// e com *TransientError em falhas de rede/5xx
	RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.TokenSet, error)

	// FetchCampaigns busca as campanhas da conta e as normaliza.
	// Falha com *RateLimitError ou *PlatformAPIError
	FetchCampaigns(ctx context.Context, cred *domain.PlatformCredential) ([]*domain.Campaign, error)

	// FetchMetrics busca métricas por dia para o conjunto de campanhas na janela
	FetchMetrics(ctx context.Context, cred *domain.PlatformCredential, campaignIDs []string, window domain.DateRange) ([]*domain.CampaignMetric, error)

	// UpdateCampaignBudget é idempotente; false sem erro sinaliza uma
	// rejeição bem-formada da plataforma que deve ser exibida ao usuário
	UpdateCampaignBudget(ctx context.Context, cred *domain.PlatformCredential, campaignID string, budget float64) (bool, error)

	// UpdateCampaignStatus ativa ou pausa a campanha; mesma semântica de retorno
	UpdateCampaignStatus(ctx context.Context, cred *domain.PlatformCredential, campaignID string, active bool) (bool, error)
}

// Registry é o registro imutável de adapters, resolvido na inicialização.
// Dispatch por enum de plataforma, sem reflection
type Registry struct {
	adapters map[domain.Platform]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	byPlatform := make(map[domain.Platform]Adapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.Platform()] = a
	}
	return &Registry{adapters: byPlatform}
}

// Get resolve o adapter da plataforma ou falha com ErrUnsupportedPlatform
func (r *Registry) Get(p domain.Platform) (Adapter, error) {
	adapter, ok := r.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, p)
	}
	return adapter, nil
}

// Platforms lista as plataformas registradas
func (r *Registry) Platforms() []domain.Platform {
	platforms := make([]domain.Platform, 0, len(r.adapters))
	for p := range r.adapters {
		platforms = append(platforms, p)
	}
	return platforms
}
