package platforms

import (
	"errors"
	"fmt"
	"time"

	"github.com/adpilot/campaign-sync-api/internal/domain"
)

// ErrUnsupportedPlatform indica um erro de programação/configuração:
// uma plataforma fora do conjunto suportado foi solicitada.
// Diferente dos erros por conta, este aborta a invocação inteira
var ErrUnsupportedPlatform = errors.New("plataforma não suportada")

// AuthError indica falha na troca inicial do código de autorização.
// É exibido ao usuário e nunca retentado
type AuthError struct {
	Platform domain.Platform
	Code     string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("erro de autorização na plataforma %s: %s (%s)", e.Platform, e.Message, e.Code)
}

// RefreshError indica que o refresh token foi revogado ou invalidado.
// A credencial deve ser desativada e o usuário precisa reconectar
type RefreshError struct {
	Platform domain.Platform
	Reason   string
	Err      error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("erro ao renovar token na plataforma %s: %s", e.Platform, e.Reason)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// TransientError indica falha de rede ou 5xx da plataforma.
// Retentável com backoff exponencial e tentativas limitadas
type TransientError struct {
	Platform domain.Platform
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("erro transitório na plataforma %s: %v", e.Platform, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// RateLimitError indica que a plataforma limitou a taxa de requisições.
// RetryAfter carrega a sugestão da plataforma quando informada
type RateLimitError struct {
	Platform   domain.Platform
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("limite de requisições excedido na plataforma %s (retry-after: %s)", e.Platform, e.RetryAfter)
	}
	return fmt.Sprintf("limite de requisições excedido na plataforma %s", e.Platform)
}

// PlatformAPIError é um erro 4xx genérico da API da plataforma,
// sem classificação mais específica
type PlatformAPIError struct {
	Platform   domain.Platform
	StatusCode int
	Body       string
}

func (e *PlatformAPIError) Error() string {
	return fmt.Sprintf("erro na API da plataforma %s. Status: %d, Corpo: %s", e.Platform, e.StatusCode, e.Body)
}

// ValidationError indica entrada malformada em uma chamada de mutação.
// Exibido imediatamente, nunca retentado
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entrada inválida em %q: %s", e.Field, e.Message)
}

// IsRetryable informa se o erro pode ser retentado pela política de retry
func IsRetryable(err error) bool {
	var transient *TransientError
	var rateLimit *RateLimitError
	return errors.As(err, &transient) || errors.As(err, &rateLimit)
}

// IsAuthRevoked informa se o erro exige a desativação da credencial
func IsAuthRevoked(err error) bool {
	var refresh *RefreshError
	return errors.As(err, &refresh)
}
