package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
)

// TokenResponse representa a resposta da Graph API ao trocar um token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExchangeCode troca o código de autorização por um token de curta duração
// e em seguida pelo token de longa duração. O Facebook não emite refresh
// token: o token de longa duração é armazenado também como refresh token
// e re-trocado via fb_exchange_token na renovação
func (a *Adapter) ExchangeCode(ctx context.Context, authCode string) (*domain.TokenSet, error) {
	if authCode == "" {
		return nil, &platforms.ValidationError{Field: "code", Message: "código de autorização não pode ser vazio"}
	}

	endpoint := fmt.Sprintf("%s/oauth/access_token", a.cfg.URL)

	params := url.Values{}
	params.Add("client_id", a.cfg.AppID)
	params.Add("client_secret", a.cfg.AppSecret)
	params.Add("redirect_uri", a.cfg.RedirectURI)
	params.Add("code", authCode)

	body, err := a.get(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, asAuthError(err)
	}

	var shortLived TokenResponse
	if err := json.Unmarshal(body, &shortLived); err != nil {
		return nil, fmt.Errorf("erro ao decodificar resposta: %w", err)
	}

	if shortLived.AccessToken == "" {
		return nil, &platforms.AuthError{
			Platform: domain.PlatformFacebook,
			Code:     "empty_token",
			Message:  "token retornado pela API é vazio",
		}
	}

	longLived, err := a.exchangeLongLivedToken(ctx, shortLived.AccessToken)
	if err != nil {
		return nil, asAuthError(err)
	}

	return longLived, nil
}

// RefreshAccessToken re-troca o token de longa duração por um novo.
// O token retornado é persistido nos dois campos, mantendo o contrato
// de rotação do adapter
func (a *Adapter) RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	if refreshToken == "" {
		return nil, &platforms.RefreshError{
			Platform: domain.PlatformFacebook,
			Reason:   "token de longa duração ausente; reconexão manual necessária",
		}
	}

	return a.exchangeLongLivedToken(ctx, refreshToken)
}

// exchangeLongLivedToken obtém um token de longa duração a partir de um
// token existente, válido por cerca de 60 dias
func (a *Adapter) exchangeLongLivedToken(ctx context.Context, token string) (*domain.TokenSet, error) {
	endpoint := fmt.Sprintf("%s/oauth/access_token", a.cfg.URL)

	params := url.Values{}
	params.Add("grant_type", "fb_exchange_token")
	params.Add("client_id", a.cfg.AppID)
	params.Add("client_secret", a.cfg.AppSecret)
	params.Add("fb_exchange_token", token)

	body, err := a.get(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("erro ao decodificar resposta: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, &platforms.RefreshError{
			Platform: domain.PlatformFacebook,
			Reason:   "token retornado pela API é vazio",
		}
	}

	return &domain.TokenSet{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.AccessToken,
		ExpiresAt:    platforms.ExpiryFromSeconds(tokenResp.ExpiresIn),
	}, nil
}
