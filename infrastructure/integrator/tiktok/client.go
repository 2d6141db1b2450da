package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/adpilot/campaign-sync-api/internal/config"
	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
)

// Adapter implementa platforms.Adapter para a TikTok Business API
type Adapter struct {
	cfg        config.TikTok
	httpClient *http.Client
}

func New(cfg config.TikTok) *Adapter {
	return &Adapter{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformTikTok
}

// envelope é o formato de resposta da Business API: o status HTTP é
// sempre 200 e o resultado real vem no campo code
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// códigos de token inválido/revogado da Business API
var revokedCodes = map[int]bool{
	40102: true,
	40104: true,
	40105: true,
}

// do envia a requisição e abre o envelope da resposta
func (a *Adapter) do(ctx context.Context, method, endpoint, accessToken string, payload any) (json.RawMessage, error) {
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
	if accessToken != "" {
		req.Header.Set("Access-Token", accessToken)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &platforms.TransientError{Platform: domain.PlatformTikTok, Err: err}
	}
	defer resp.Body.Close()

	raw, err := platforms.ReadResponse(domain.PlatformTikTok, resp)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := jsoniter.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("erro ao deserializar o envelope da resposta: %w", err)
	}

	if env.Code != 0 {
		return nil, classifyCode(env)
	}

	return env.Data, nil
}

// classifyCode traduz códigos de negócio do envelope para a taxonomia
// de erros das plataformas
func classifyCode(env envelope) error {
	if revokedCodes[env.Code] || strings.Contains(strings.ToLower(env.Message), "token") {
		return &platforms.RefreshError{
			Platform: domain.PlatformTikTok,
			Reason:   fmt.Sprintf("código %d: %s", env.Code, env.Message),
		}
	}

	return &platforms.PlatformAPIError{
		Platform:   domain.PlatformTikTok,
		StatusCode: http.StatusBadRequest,
		Body:       fmt.Sprintf("código %d: %s", env.Code, env.Message),
	}
}

// asAuthError converte erros da troca de código em *platforms.AuthError.
// Falhas transitórias e de rate limit passam inalteradas
func asAuthError(err error) error {
	var apiErr *platforms.PlatformAPIError
	if errors.As(err, &apiErr) {
		return &platforms.AuthError{
			Platform: domain.PlatformTikTok,
			Code:     "invalid_auth_code",
			Message:  apiErr.Body,
		}
	}

	var refreshErr *platforms.RefreshError
	if errors.As(err, &refreshErr) {
		return &platforms.AuthError{
			Platform: domain.PlatformTikTok,
			Code:     "invalid_auth_code",
			Message:  refreshErr.Reason,
		}
	}

	return err
}

// isRejection identifica rejeições de negócio da API de mutações.
// No envelope da Business API elas chegam como PlatformAPIError
func isRejection(err error) bool {
	var apiErr *platforms.PlatformAPIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest
}
