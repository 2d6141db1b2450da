package naver

import (
	"context"
	"fmt"
	"net/url"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in,string"`
	TokenType    string `json:"token_type"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

func (a *Adapter) ExchangeCode(ctx context.Context, code string) (*domain.TokenSet, error) {
	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("client_id", a.cfg.ClientID)
	params.Set("client_secret", a.cfg.ClientSecret)
	params.Set("redirect_uri", a.cfg.RedirectURI)

	token, err := a.requestToken(ctx, params)
	if err != nil {
		return nil, asAuthError(err)
	}

	return token, nil
}

func (a *Adapter) RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	params := url.Values{}
	params.Set("grant_type", "refresh_token")
	params.Set("refresh_token", refreshToken)
	params.Set("client_id", a.cfg.ClientID)
	params.Set("client_secret", a.cfg.ClientSecret)

	token, err := a.requestToken(ctx, params)
	if err != nil {
		return nil, err
	}
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}

	return token, nil
}

// requestToken chama o endpoint OAuth do Naver, que reporta erros com
// status 200 e um campo error no corpo
func (a *Adapter) requestToken(ctx context.Context, params url.Values) (*domain.TokenSet, error) {
	body, err := a.postForm(ctx, a.cfg.TokenURL, params)
	if err != nil {
		return nil, err
	}

	var token tokenResponse
	if err := jsoniter.Unmarshal(body, &token); err != nil {
		return nil, errors.Wrap(err, "erro ao deserializar a resposta de token")
	}

	if token.Error != "" {
		return nil, &platforms.RefreshError{
			Platform: domain.PlatformNaver,
			Reason:   fmt.Sprintf("%s: %s", token.Error, token.ErrorDesc),
		}
	}

	return &domain.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    platforms.ExpiryFromSeconds(token.ExpiresIn),
	}, nil
}
