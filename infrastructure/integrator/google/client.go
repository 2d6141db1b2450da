package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adpilot/campaign-sync-api/internal/config"
	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
)

// Adapter implementa platforms.Adapter para a API do Google Ads
type Adapter struct {
	cfg        config.Google
	httpClient *http.Client
}

func New(cfg config.Google) *Adapter {
	return &Adapter{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformGoogle
}

// postForm envia requisições ao endpoint OAuth do Google
func (a *Adapter) postForm(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &platforms.TransientError{Platform: domain.PlatformGoogle, Err: err}
	}
	defer resp.Body.Close()

	return platforms.ReadResponse(domain.PlatformGoogle, resp)
}

// postJSON envia requisições autenticadas à API do Google Ads.
// O developer token acompanha toda chamada de dados
func (a *Adapter) postJSON(ctx context.Context, endpoint, accessToken string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("developer-token", a.cfg.DeveloperToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &platforms.TransientError{Platform: domain.PlatformGoogle, Err: err}
	}
	defer resp.Body.Close()

	return platforms.ReadResponse(domain.PlatformGoogle, resp)
}

// asAuthError converte erros da troca de código em *platforms.AuthError.
// Falhas transitórias e de rate limit passam inalteradas
func asAuthError(err error) error {
	var apiErr *platforms.PlatformAPIError
	if errors.As(err, &apiErr) {
		return &platforms.AuthError{
			Platform: domain.PlatformGoogle,
			Code:     "invalid_grant",
			Message:  apiErr.Body,
		}
	}

	var refreshErr *platforms.RefreshError
	if errors.As(err, &refreshErr) {
		return &platforms.AuthError{
			Platform: domain.PlatformGoogle,
			Code:     "invalid_grant",
			Message:  refreshErr.Reason,
		}
	}

	return err
}

// isRejection identifica rejeições bem-formadas da API de mutações,
// que o chamador deve exibir ao usuário em vez de retentar
func isRejection(err error) bool {
	var apiErr *platforms.PlatformAPIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusConflict)
}
