package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/adpilot/campaign-sync-api/infrastructure/cache"
	"github.com/adpilot/campaign-sync-api/infrastructure/repository"
	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
	"github.com/adpilot/campaign-sync-api/pkg/retry"
)

// Refresher garante tokens de acesso válidos antes de qualquer chamada às
// plataformas. Renovações são coalescidas por credencial via single-flight:
// chamadores concorrentes da mesma credencial compartilham uma única
// renovação em andamento. Emitir duas renovações concorrentes em plataformas
// que rotacionam o refresh token invalida o token que o outro chamador
// está prestes a usar
type Refresher struct {
	creds    repository.CredentialRepository
	registry *platforms.Registry
	cache    *cache.TokenCache
	buffer   time.Duration
	policy   retry.Policy
	group    singleflight.Group
}

func NewRefresher(
	creds repository.CredentialRepository,
	registry *platforms.Registry,
	tokenCache *cache.TokenCache,
	buffer time.Duration,
	policy retry.Policy,
) *Refresher {
	return &Refresher{
		creds:    creds,
		registry: registry,
		cache:    tokenCache,
		buffer:   buffer,
		policy:   policy,
	}
}

// EnsureValidToken retorna o token atual imediatamente quando válido;
// caso contrário dispara (ou se junta a) uma renovação.
// Propaga *platforms.RefreshError quando a credencial foi desativada e
// *platforms.TransientError quando o chamador deve retentar o sync depois
func (r *Refresher) EnsureValidToken(ctx context.Context, cred *domain.PlatformCredential) (string, error) {
	if cred == nil {
		return "", errors.New("credencial não pode ser nula")
	}

	if !cred.NearExpiry(time.Now(), r.buffer) {
		return cred.AccessToken, nil
	}

	// Outro processo pode já ter renovado; um token diferente ainda vivo
	// no cache evita uma renovação redundante. O banco continua sendo a
	// fonte de verdade quando houver divergência
	if cached := r.cache.Get(ctx, cred); cached != "" && cached != cred.AccessToken {
		return cached, nil
	}

	// O flight roda num contexto desvinculado do chamador: se o líder for
	// cancelado depois que a plataforma já rotacionou o refresh token,
	// abortar a renovação perderia o token rotacionado
	flightCtx := context.WithoutCancel(ctx)
	result, err, _ := r.group.Do(cred.ID, func() (interface{}, error) {
		return r.refresh(flightCtx, cred.ID)
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// refresh executa a renovação para uma credencial. Sempre relê o estado do
// banco antes de chamar a plataforma: quem perdeu a corrida pelo
// single-flight não deve renovar de novo com um refresh token já rotacionado
func (r *Refresher) refresh(ctx context.Context, credentialID string) (string, error) {
	cred, err := r.creds.GetByID(credentialID)
	if err != nil {
		return "", fmt.Errorf("erro ao reler credencial: %w", err)
	}
	if cred == nil {
		return "", fmt.Errorf("credencial não encontrada: %s", credentialID)
	}
	if !cred.Active {
		return "", &platforms.RefreshError{
			Platform: cred.Platform,
			Reason:   "credencial desativada; reconexão manual necessária",
		}
	}

	now := time.Now()
	if !cred.NearExpiry(now, r.buffer) {
		// Outro chamador renovou entre a decisão e a entrada no flight
		return cred.AccessToken, nil
	}

	adapter, err := r.registry.Get(cred.Platform)
	if err != nil {
		return "", err
	}

	if cred.RefreshToken == nil || *cred.RefreshToken == "" {
		if cred.ExpiresAt == nil {
			return cred.AccessToken, nil
		}

		reason := "token expirado sem refresh token; reconexão manual necessária"
		if markErr := r.creds.MarkInactive(cred.ID, reason); markErr != nil {
			logrus.WithError(markErr).Error("Erro ao desativar credencial sem refresh token")
		}
		r.cache.Invalidate(ctx, cred)
		return "", &platforms.RefreshError{Platform: cred.Platform, Reason: reason}
	}

	logrus.WithFields(logrus.Fields{
		"credential_id": cred.ID,
		"platform":      cred.Platform,
		"account_id":    cred.AccountID,
	}).Info("Iniciando renovação do token")

	var tokens *domain.TokenSet
	err = r.policy.Do(ctx, func() error {
		refreshed, refreshErr := adapter.RefreshAccessToken(ctx, *cred.RefreshToken)
		if refreshErr != nil {
			return refreshErr
		}
		tokens = refreshed
		return nil
	})
	if err != nil {
		if platforms.IsAuthRevoked(err) {
			logrus.WithFields(logrus.Fields{
				"credential_id": cred.ID,
				"platform":      cred.Platform,
			}).Warn("Refresh token revogado; desativando credencial")

			if markErr := r.creds.MarkInactive(cred.ID, err.Error()); markErr != nil {
				logrus.WithError(markErr).Error("Erro ao desativar credencial com token revogado")
			}
			r.cache.Invalidate(ctx, cred)
		}
		return "", err
	}

	if err := r.persist(cred, tokens); err != nil {
		return "", err
	}

	r.cache.Put(ctx, cred, *tokens)

	logrus.WithFields(logrus.Fields{
		"credential_id": cred.ID,
		"platform":      cred.Platform,
		"rotated":       tokens.RefreshToken != *cred.RefreshToken,
	}).Info("Token renovado com sucesso")

	return tokens.AccessToken, nil
}

// persist grava os novos tokens via compare-and-set. Em caso de corrida com
// outra renovação, relê o estado e tenta no máximo mais uma vez
func (r *Refresher) persist(cred *domain.PlatformCredential, next *domain.TokenSet) error {
	err := r.creds.UpdateTokens(cred.ID, cred.TokenSet(), *next)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrConcurrentModification) {
		return fmt.Errorf("erro ao persistir tokens renovados: %w", err)
	}

	latest, readErr := r.creds.GetByID(cred.ID)
	if readErr != nil {
		return fmt.Errorf("erro ao reler credencial após conflito: %w", readErr)
	}
	if latest == nil {
		return fmt.Errorf("credencial não encontrada após conflito: %s", cred.ID)
	}

	if !latest.NearExpiry(time.Now(), r.buffer) {
		// A escrita concorrente já deixou tokens válidos; manter os dela
		next.AccessToken = latest.AccessToken
		return nil
	}

	if err := r.creds.UpdateTokens(latest.ID, latest.TokenSet(), *next); err != nil {
		return fmt.Errorf("erro ao persistir tokens após reler credencial: %w", err)
	}

	return nil
}
