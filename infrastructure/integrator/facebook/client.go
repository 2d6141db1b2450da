package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adpilot/campaign-sync-api/internal/config"
	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
)

// Adapter implementa platforms.Adapter para a Graph API do Facebook/Meta
type Adapter struct {
	cfg        config.Facebook
	httpClient *http.Client
}

func New(cfg config.Facebook) *Adapter {
	return &Adapter{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformFacebook
}

// ErrorResponse representa a estrutura de erro da Graph API
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da Graph API
type ErrorDetails struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode,omitempty"`
	FBTraceID    string `json:"fbtrace_id"`
}

// IsTokenExpired verifica se o erro é de token expirado.
// O código 190 representa "token expirado" nas respostas da Graph API;
// subcódigos 460, 463 e 467 indicam problemas de sessão/token
func (e *ErrorResponse) IsTokenExpired() bool {
	return e.Error.Code == 190 ||
		(e.Error.Type == "OAuthException" && (e.Error.ErrorSubcode == 460 || e.Error.ErrorSubcode == 463 || e.Error.ErrorSubcode == 467))
}

// handleResponse lê o corpo e classifica erros, tratando o formato de erro
// específico da Graph API antes da classificação genérica por status
func (a *Adapter) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &platforms.TransientError{Platform: domain.PlatformFacebook, Err: err}
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return body, nil
	}

	var errorResp ErrorResponse
	if parseErr := json.Unmarshal(body, &errorResp); parseErr == nil && errorResp.IsTokenExpired() {
		return nil, &platforms.RefreshError{
			Platform: domain.PlatformFacebook,
			Reason:   errorResp.Error.Message,
		}
	}

	return nil, platforms.ClassifyStatus(domain.PlatformFacebook, resp.StatusCode, string(body), resp.Header.Get("Retry-After"))
}

func (a *Adapter) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &platforms.TransientError{Platform: domain.PlatformFacebook, Err: err}
	}
	defer resp.Body.Close()

	return a.handleResponse(resp)
}

func (a *Adapter) post(ctx context.Context, requestURL string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &platforms.TransientError{Platform: domain.PlatformFacebook, Err: err}
	}
	defer resp.Body.Close()

	return a.handleResponse(resp)
}

// asAuthError converte erros da troca de código em *platforms.AuthError.
// Falhas transitórias e de rate limit passam inalteradas
func asAuthError(err error) error {
	var apiErr *platforms.PlatformAPIError
	if errors.As(err, &apiErr) {
		return &platforms.AuthError{
			Platform: domain.PlatformFacebook,
			Code:     "invalid_code",
			Message:  apiErr.Body,
		}
	}

	var refreshErr *platforms.RefreshError
	if errors.As(err, &refreshErr) {
		return &platforms.AuthError{
			Platform: domain.PlatformFacebook,
			Code:     "invalid_code",
			Message:  refreshErr.Reason,
		}
	}

	return err
}
