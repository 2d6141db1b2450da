package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/usecases/managing"
	"github.com/adpilot/campaign-sync-api/pkg/apiErrors"
)

type updateBudgetRequest struct {
	Budget float64 `json:"budget"`
}

type updateStatusRequest struct {
	Active bool `json:"active"`
}

func ListCampaigns(service managing.Manager) http.Handler {
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

		campaigns, err := service.ListCampaigns(claims.TeamID, platform)
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar campanhas")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar campanhas", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(campaigns); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

func GetCampaignMetrics(service managing.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFromContext(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		campaignID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		window, err := parseWindow(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		metrics, err := service.GetCampaignMetrics(claims.TeamID, campaignID, window)
		if err != nil {
			if errors.Is(err, managing.ErrCampaignNotFound) {
				apiErrors.WriteError(w, apiErrors.ErrNotFound, "Campanha não encontrada", nil)
				return
			}

			logrus.WithError(err).Error("Erro ao consultar métricas da campanha")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar métricas", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(metrics); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

func UpdateCampaignBudget(service managing.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - UpdateCampaignBudget")

		claims, ok := claimsFromContext(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		campaignID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req updateBudgetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
			return
		}

		campaign, err := service.UpdateBudget(r.Context(), claims.TeamID, campaignID, req.Budget)
		if err != nil {
			writeManagingError(w, err, "Erro ao atualizar orçamento da campanha")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(campaign); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

func UpdateCampaignStatus(service managing.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - UpdateCampaignStatus")

		claims, ok := claimsFromContext(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		campaignID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
			return
		}

		campaign, err := service.UpdateStatus(r.Context(), claims.TeamID, campaignID, req.Active)
		if err != nil {
			writeManagingError(w, err, "Erro ao atualizar status da campanha")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(campaign); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// writeManagingError traduz os erros das mutações de campanha para a resposta HTTP
func writeManagingError(w http.ResponseWriter, err error, logMessage string) {
	if errors.Is(err, managing.ErrCampaignNotFound) {
		apiErrors.WriteError(w, apiErrors.ErrNotFound, "Campanha não encontrada", nil)
		return
	}
	if errors.Is(err, managing.ErrRejectedByPlatform) {
		apiErrors.WriteError(w, apiErrors.ErrPlatformRejected, err.Error(), nil)
		return
	}

	logrus.WithError(err).Error(logMessage)
	apiErrors.WriteFromError(w, err)
}

// parseWindow monta a janela de datas a partir dos parâmetros start e end.
// Sem parâmetros, os últimos 30 dias
func parseWindow(r *http.Request) (domain.DateRange, error) {
	now := time.Now()
	window := domain.DateRange{
		Start: now.AddDate(0, 0, -30),
		End:   now,
	}

	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return domain.DateRange{}, errors.New("parâmetro start inválido, formato esperado: AAAA-MM-DD")
		}
		window.Start = start
	}

	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return domain.DateRange{}, errors.New("parâmetro end inválido, formato esperado: AAAA-MM-DD")
		}
		window.End = end
	}

	if window.End.Before(window.Start) {
		return domain.DateRange{}, errors.New("a data final não pode ser anterior à inicial")
	}

	return window, nil
}
