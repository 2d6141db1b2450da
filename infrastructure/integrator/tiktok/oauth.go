package tiktok

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
)

type tokenData struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expire_in"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expire_in"`
}

func (a *Adapter) ExchangeCode(ctx context.Context, code string) (*domain.TokenSet, error) {
	payload := map[string]string{
		"app_id":    a.cfg.AppID,
		"secret":    a.cfg.AppSecret,
		"auth_code": code,
	}

	data, err := a.do(ctx, http.MethodPost, a.cfg.BaseURL+"/oauth2/access_token/", "", payload)
	if err != nil {
		return nil, asAuthError(err)
	}

	return parseTokenData(data)
}

// RefreshAccessToken renova o par de tokens. A Business API sempre
// rotaciona o refresh token: o antigo é invalidado na hora
func (a *Adapter) RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	payload := map[string]string{
		"app_id":        a.cfg.AppID,
		"secret":        a.cfg.AppSecret,
		"refresh_token": refreshToken,
	}

	data, err := a.do(ctx, http.MethodPost, a.cfg.BaseURL+"/oauth2/refresh_token/", "", payload)
	if err != nil {
		return nil, err
	}

	return parseTokenData(data)
}

func parseTokenData(data []byte) (*domain.TokenSet, error) {
	var token tokenData
	if err := jsoniter.Unmarshal(data, &token); err != nil {
		return nil, errors.Wrap(err, "erro ao deserializar a resposta de token")
	}

	return &domain.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    platforms.ExpiryFromSeconds(token.AccessTokenExpiresIn),
	}, nil
}
