package apiErrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adpilot/campaign-sync-api/internal/platforms"
)

// Códigos de erro da API
const (
	// Erros de autenticação (AUTH)
	ErrInvalidToken          = "AUTH_001" // Token inválido
	ErrExpiredToken          = "AUTH_002" // Token expirado
	ErrInsufficientPrivilege = "AUTH_003" // Privilégios insuficientes
	ErrCredentialRevoked     = "AUTH_004" // Credencial da plataforma revogada
	ErrAuthorizationFailed   = "AUTH_005" // Troca de código de autorização falhou

	// Erros de validação (VAL)
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrNotFound            = "VAL_004" // Recurso não encontrado

	// Erros de plataforma (PLT)
	ErrUnsupportedPlatform = "PLT_001" // Plataforma não suportada
	ErrPlatformRejected    = "PLT_002" // Mutação recusada pela plataforma
	ErrRateLimited         = "PLT_003" // Limite de requisições da plataforma
	ErrPlatformAPI         = "PLT_004" // Erro genérico da API da plataforma

	// Erros do servidor (SRV)
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
	ErrExternalService   = "SRV_003" // Erro em serviço externo
	ErrCommunication     = "SRV_004" // Erro de comunicação
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidToken:          http.StatusUnauthorized,
	ErrExpiredToken:          http.StatusUnauthorized,
	ErrInsufficientPrivilege: http.StatusForbidden,
	ErrCredentialRevoked:     http.StatusConflict,
	ErrAuthorizationFailed:   http.StatusBadRequest,
	ErrInvalidRequest:        http.StatusBadRequest,
	ErrMissingRequiredData:   http.StatusBadRequest,
	ErrInvalidFormat:         http.StatusBadRequest,
	ErrNotFound:              http.StatusNotFound,
	ErrUnsupportedPlatform:   http.StatusBadRequest,
	ErrPlatformRejected:      http.StatusUnprocessableEntity,
	ErrRateLimited:           http.StatusTooManyRequests,
	ErrPlatformAPI:           http.StatusBadGateway,
	ErrInternalServer:        http.StatusInternalServerError,
	ErrDatabaseOperation:     http.StatusInternalServerError,
	ErrExternalService:       http.StatusBadGateway,
	ErrCommunication:         http.StatusServiceUnavailable,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`              // Código de erro para o cliente
	Message string `json:"message,omitempty"` // Mensagem descritiva (opcional)
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	status, exists := httpStatusMap[code]
	if !exists {
		status = http.StatusInternalServerError
	}

	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiErr)
}

// WriteFromError classifica o erro pela taxonomia das plataformas e escreve
// a resposta correspondente. Erros desconhecidos viram erro interno
func WriteFromError(w http.ResponseWriter, err error) {
	var validationErr *platforms.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, ErrInvalidRequest, validationErr.Error(), nil)
		return
	}

	var authErr *platforms.AuthError
	if errors.As(err, &authErr) {
		WriteError(w, ErrAuthorizationFailed, authErr.Error(), nil)
		return
	}

	var refreshErr *platforms.RefreshError
	if errors.As(err, &refreshErr) {
		WriteError(w, ErrCredentialRevoked, refreshErr.Error(), nil)
		return
	}

	var rateLimitErr *platforms.RateLimitError
	if errors.As(err, &rateLimitErr) {
		WriteError(w, ErrRateLimited, rateLimitErr.Error(), nil)
		return
	}

	var apiErr *platforms.PlatformAPIError
	if errors.As(err, &apiErr) {
		WriteError(w, ErrPlatformAPI, apiErr.Error(), nil)
		return
	}

	if errors.Is(err, platforms.ErrUnsupportedPlatform) {
		WriteError(w, ErrUnsupportedPlatform, err.Error(), nil)
		return
	}

	WriteError(w, ErrInternalServer, err.Error(), nil)
}
