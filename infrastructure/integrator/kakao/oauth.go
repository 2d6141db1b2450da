package kakao

import (
	"context"
	"net/url"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func (a *Adapter) ExchangeCode(ctx context.Context, code string) (*domain.TokenSet, error) {
	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("client_id", a.cfg.ClientID)
	params.Set("client_secret", a.cfg.ClientSecret)
	params.Set("redirect_uri", a.cfg.RedirectURI)

	body, err := a.postForm(ctx, a.cfg.TokenURL, params)
	if err != nil {
		return nil, asAuthError(err)
	}

	var token tokenResponse
	if err := jsoniter.Unmarshal(body, &token); err != nil {
		return nil, errors.Wrap(err, "erro ao deserializar a resposta de token")
	}

	return &domain.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    platforms.ExpiryFromSeconds(token.ExpiresIn),
	}, nil
}

// RefreshAccessToken renova o access token. O Kakao só devolve um novo
// refresh token quando decide rotacioná-lo; na ausência, o atual segue válido
func (a *Adapter) RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	params := url.Values{}
	params.Set("grant_type", "refresh_token")
	params.Set("refresh_token", refreshToken)
	params.Set("client_id", a.cfg.ClientID)
	params.Set("client_secret", a.cfg.ClientSecret)

	body, err := a.postForm(ctx, a.cfg.TokenURL, params)
	if err != nil {
		return nil, err
	}

	var token tokenResponse
	if err := jsoniter.Unmarshal(body, &token); err != nil {
		return nil, errors.Wrap(err, "erro ao deserializar a resposta de token")
	}

	next := &domain.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    platforms.ExpiryFromSeconds(token.ExpiresIn),
	}
	if next.RefreshToken == "" {
		next.RefreshToken = refreshToken
	}

	return next, nil
}
