package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/usecases/connecting"
	"github.com/adpilot/campaign-sync-api/pkg/apiErrors"
	"github.com/adpilot/campaign-sync-api/pkg/middleware"
)

// credentialResponse é a projeção pública de uma credencial.
// Tokens nunca saem pela API
type credentialResponse struct {
	ID           string          `json:"id"`
	Platform     domain.Platform `json:"platform"`
	AccountID    string          `json:"account_id"`
	AccountName  string          `json:"account_name,omitempty"`
	Active       bool            `json:"active"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	LastSyncedAt *time.Time      `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toCredentialResponse(cred *domain.PlatformCredential) credentialResponse {
	return credentialResponse{
		ID:           cred.ID,
		Platform:     cred.Platform,
		AccountID:    cred.AccountID,
		AccountName:  cred.AccountName,
		Active:       cred.Active,
		ExpiresAt:    cred.ExpiresAt,
		LastSyncedAt: cred.LastSyncedAt,
		CreatedAt:    cred.CreatedAt,
	}
}

// claimsFromContext recupera as claims do usuário autenticado
func claimsFromContext(r *http.Request) (*domain.Claims, bool) {
	claims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
	return claims, ok
}

func ListCredentials(service connecting.Connector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFromContext(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		var platform *domain.Platform
		if raw := r.URL.Query().Get("platform"); raw != "" {
			parsed, err := domain.ParsePlatform(raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
				return
			}
			platform = &parsed
		}

		creds, err := service.ListCredentials(claims.TeamID, platform)
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar credenciais")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar credenciais", nil)
			return
		}

		response := make([]credentialResponse, 0, len(creds))
		for _, cred := range creds {
			response = append(response, toCredentialResponse(cred))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

func ConnectPlatform(service connecting.Connector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - ConnectPlatform")

		claims, ok := claimsFromContext(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		var req connecting.ConnectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
			return
		}
		req.TeamID = claims.TeamID

		cred, err := service.Connect(r.Context(), &req)
		if err != nil {
			logrus.WithError(err).Error("Erro ao conectar plataforma")
			apiErrors.WriteFromError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(toCredentialResponse(cred)); err != nil {
			logrus.WithError(err).Warn("Erro ao codificar resposta de conexão")
		}
	})
}

func DisconnectPlatform(service connecting.Connector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - DisconnectPlatform")

		claims, ok := claimsFromContext(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		credentialID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if credentialID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Identificador da credencial não informado", nil)
			return
		}

		purge := r.URL.Query().Get("purge") == "true"

		err := service.Disconnect(r.Context(), claims.TeamID, credentialID, purge)
		if err != nil {
			if errors.Is(err, connecting.ErrCredentialNotFound) {
				apiErrors.WriteError(w, apiErrors.ErrNotFound, "Credencial não encontrada", nil)
				return
			}

			logrus.WithError(err).Error("Erro ao desconectar plataforma")
			apiErrors.WriteFromError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
