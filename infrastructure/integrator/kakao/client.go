package kakao

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

// Adapter implementa platforms.Adapter para a API do Kakao Moment
type Adapter struct {
	cfg        config.Kakao
	httpClient *http.Client
}

func New(cfg config.Kakao) *Adapter {
	return &Adapter{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformKakao
}

func (a *Adapter) postForm(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &platforms.TransientError{Platform: domain.PlatformKakao, Err: err}
	}
	defer resp.Body.Close()

	return platforms.ReadResponse(domain.PlatformKakao, resp)
}

// do envia requisições autenticadas à API de dados. A conta de anúncio
// vai no header adAccountId, não na URL
func (a *Adapter) do(ctx context.Context, method, endpoint string, cred *domain.PlatformCredential, payload any) ([]byte, error) {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("adAccountId", cred.AccountID)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &platforms.TransientError{Platform: domain.PlatformKakao, Err: err}
	}
	defer resp.Body.Close()

	return platforms.ReadResponse(domain.PlatformKakao, resp)
}

// asAuthError converte erros da troca de código em *platforms.AuthError.
// Falhas transitórias e de rate limit passam inalteradas
func asAuthError(err error) error {
	var apiErr *platforms.PlatformAPIError
	if errors.As(err, &apiErr) {
		return &platforms.AuthError{
			Platform: domain.PlatformKakao,
			Code:     "invalid_grant",
			Message:  apiErr.Body,
		}
	}

	var refreshErr *platforms.RefreshError
	if errors.As(err, &refreshErr) {
		return &platforms.AuthError{
			Platform: domain.PlatformKakao,
			Code:     "invalid_grant",
			Message:  refreshErr.Reason,
		}
	}

	return err
}

func isRejection(err error) bool {
	var apiErr *platforms.PlatformAPIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusConflict)
}
