package syncing

import (
	"context"

	"github.com/adpilot/campaign-sync-api/internal/domain"
)

// TokenEnsurer garante um access token válido antes das chamadas às plataformas
type TokenEnsurer interface {
	// EnsureValidToken retorna o token vigente, renovando quando perto de expirar
	EnsureValidToken(ctx context.Context, cred *domain.PlatformCredential) (string, error)
}

// Syncer define a interface de orquestração de sincronização de campanhas
type Syncer interface {
	// SyncPlatform sincroniza todas as contas conectadas de uma plataforma do time
	SyncPlatform(ctx context.Context, teamID string, platform domain.Platform) (*domain.SyncResult, error)

	// SyncAllPlatforms sincroniza todas as plataformas com credenciais ativas do time
	SyncAllPlatforms(ctx context.Context, teamID string) (*domain.BatchResult, error)
}
