package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/adpilot/campaign-sync-api/internal/domain"
)

// Connect inicializa um cliente Redis a partir de uma URL ou host:porta
func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("erro ao interpretar a URL do redis: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// TokenCache é uma camada opcional de aceleração para tokens de acesso,
// chaveada por platform:team:account. É cache, não fonte de verdade:
// o CredentialStore sempre vence em caso de conflito, e falhas aqui
// degradam silenciosamente para leituras do banco
type TokenCache struct {
	client *redis.Client
}

func NewTokenCache(client *redis.Client) *TokenCache {
	return &TokenCache{client: client}
}

type cachedToken struct {
	AccessToken string     `json:"access_token"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func tokenKey(cred *domain.PlatformCredential) string {
	return fmt.Sprintf("token:%s:%s:%s", cred.Platform, cred.TeamID, cred.AccountID)
}

// Get retorna o token em cache, ou "" quando ausente, expirado ou com erro
func (c *TokenCache) Get(ctx context.Context, cred *domain.PlatformCredential) string {
	if c == nil || c.client == nil {
		return ""
	}

	raw, err := c.client.Get(ctx, tokenKey(cred)).Result()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).Debug("Falha ao ler token do cache")
		}
		return ""
	}

	var token cachedToken
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return ""
	}

	return token.AccessToken
}

// Put grava o token com TTL igual à vida útil restante.
// Tokens sem expiração ganham um TTL fixo conservador
func (c *TokenCache) Put(ctx context.Context, cred *domain.PlatformCredential, tokens domain.TokenSet) {
	if c == nil || c.client == nil {
		return
	}

	ttl := 24 * time.Hour
	if tokens.ExpiresAt != nil {
		ttl = time.Until(*tokens.ExpiresAt)
		if ttl <= 0 {
			return
		}
	}

	payload, err := json.Marshal(cachedToken{
		AccessToken: tokens.AccessToken,
		ExpiresAt:   tokens.ExpiresAt,
	})
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, tokenKey(cred), payload, ttl).Err(); err != nil {
		logrus.WithError(err).Debug("Falha ao gravar token no cache")
	}
}

// Invalidate remove o token do cache, usado ao desativar credenciais
func (c *TokenCache) Invalidate(ctx context.Context, cred *domain.PlatformCredential) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, tokenKey(cred)).Err(); err != nil {
		logrus.WithError(err).Debug("Falha ao invalidar token no cache")
	}
}
