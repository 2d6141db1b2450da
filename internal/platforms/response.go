package platforms

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adpilot/campaign-sync-api/internal/domain"
)

// revokedTokenMarkers são fragmentos de resposta que indicam refresh token
// revogado ou sessão invalidada, comuns às plataformas OAuth
var revokedTokenMarkers = []string{
	"invalid_grant",
	"token has been expired or revoked",
	"refresh token is invalid",
	"Session has expired",
	"The session has been invalidated",
}

// ContainsRevokedTokenMarker verifica se o corpo indica token revogado
func ContainsRevokedTokenMarker(body string) bool {
	for _, marker := range revokedTokenMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

// ReadResponse lê o corpo e classifica o status HTTP na taxonomia de erros.
// Adapters delegam aqui para manter a classificação uniforme entre plataformas
func ReadResponse(platform domain.Platform, resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Platform: platform, Err: err}
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return body, nil
	}

	return nil, ClassifyStatus(platform, resp.StatusCode, string(body), resp.Header.Get("Retry-After"))
}

// ClassifyStatus converte um status HTTP de erro em um erro da taxonomia
func ClassifyStatus(platform domain.Platform, status int, body, retryAfter string) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &RateLimitError{Platform: platform, RetryAfter: parseRetryAfter(retryAfter)}
	case status >= http.StatusInternalServerError:
		return &TransientError{Platform: platform, Err: &PlatformAPIError{
			Platform:   platform,
			StatusCode: status,
			Body:       body,
		}}
	case (status == http.StatusUnauthorized || status == http.StatusBadRequest) && ContainsRevokedTokenMarker(body):
		return &RefreshError{Platform: platform, Reason: body}
	default:
		return &PlatformAPIError{Platform: platform, StatusCode: status, Body: body}
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return 0
}

// ExpiryFromSeconds calcula a data de expiração a partir do expires_in da
// resposta OAuth. Zero ou negativo significa token sem expiração
func ExpiryFromSeconds(expiresIn int64) *time.Time {
	if expiresIn <= 0 {
		return nil
	}
	expiresAt := time.Now().Add(time.Duration(expiresIn) * time.Second)
	return &expiresAt
}
