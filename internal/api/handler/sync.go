package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/scheduler"
	"github.com/adpilot/campaign-sync-api/internal/usecases/syncing"
	"github.com/adpilot/campaign-sync-api/pkg/apiErrors"
)

// SyncAllPlatforms dispara a sincronização de todas as plataformas do time.
// A resposta carrega o resultado por plataforma, inclusive nos lotes
// parcialmente bem-sucedidos
func SyncAllPlatforms(service syncing.Syncer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - SyncAllPlatforms")

		claims, ok := claimsFromContext(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		batch, err := service.SyncAllPlatforms(r.Context(), claims.TeamID)
		if err != nil {
			logrus.WithError(err).Error("Erro ao sincronizar plataformas")
			apiErrors.WriteFromError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(batch); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// SyncPlatform dispara a sincronização de uma plataforma específica do time
func SyncPlatform(service syncing.Syncer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - SyncPlatform")

		claims, ok := claimsFromContext(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		raw := httprouter.ParamsFromContext(r.Context()).ByName("platform")
		platform, err := domain.ParsePlatform(raw)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		result, err := service.SyncPlatform(r.Context(), claims.TeamID, platform)
		if err != nil {
			logrus.WithError(err).Error("Erro ao sincronizar plataforma")
			apiErrors.WriteFromError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// GetSyncStatus retorna o status do agendador de sincronização
func GetSyncStatus(service *scheduler.PlatformSyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(service.GetStatus()); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// RunScheduledSync dispara manualmente a varredura agendada de todos os times
func RunScheduledSync(service *scheduler.PlatformSyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunScheduledSync")

		service.TriggerManualSync()

		w.Header().Set("Content-Type", "application/json")
		response := map[string]any{
			"message": "Sincronização iniciada com sucesso",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logrus.WithError(err).Warn("Erro ao codificar resposta de sincronização manual")
		}
	})
}
