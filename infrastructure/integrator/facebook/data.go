package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
)

type rawCampaign struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	DailyBudget    string `json:"daily_budget,omitempty"`
	LifetimeBudget string `json:"lifetime_budget,omitempty"`
}

type campaignsResponse struct {
	Data   []rawCampaign `json:"data"`
	Paging struct {
		Next string `json:"next,omitempty"`
	} `json:"paging"`
}

// FetchCampaigns busca as campanhas da conta, seguindo a paginação da
// Graph API até o final
func (a *Adapter) FetchCampaigns(ctx context.Context, cred *domain.PlatformCredential) ([]*domain.Campaign, error) {
	baseURL := fmt.Sprintf("%s/act_%s/campaigns", a.cfg.URL, cred.AccountID)

	params := url.Values{}
	params.Add("fields", "id,name,status,daily_budget,lifetime_budget")
	params.Add("access_token", cred.AccessToken)

	requestURL := baseURL + "?" + params.Encode()
	campaigns := make([]*domain.Campaign, 0)

	for requestURL != "" {
		body, err := a.get(ctx, requestURL)
		if err != nil {
			return nil, err
		}

		var response campaignsResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("erro ao decodificar JSON: %w", err)
		}

		for _, raw := range response.Data {
			campaigns = append(campaigns, a.normalizeCampaign(cred, raw))
		}

		requestURL = response.Paging.Next
	}

	return campaigns, nil
}

// normalizeCampaign mapeia o formato da Graph API para a projeção
// normalizada. Orçamentos vêm em centavos da moeda da conta
func (a *Adapter) normalizeCampaign(cred *domain.PlatformCredential, raw rawCampaign) *domain.Campaign {
	budget := 0.0
	if raw.DailyBudget != "" {
		if cents, err := strconv.ParseFloat(raw.DailyBudget, 64); err == nil {
			budget = cents / 100
		}
	} else if raw.LifetimeBudget != "" {
		if cents, err := strconv.ParseFloat(raw.LifetimeBudget, 64); err == nil {
			budget = cents / 100
		}
	}

	payload, _ := json.Marshal(raw)

	return &domain.Campaign{
		TeamID:       cred.TeamID,
		Platform:     domain.PlatformFacebook,
		ExternalID:   raw.ID,
		CredentialID: cred.ID,
		Name:         raw.Name,
		Status:       normalizeStatus(raw.Status),
		Budget:       budget,
		RawPayload:   payload,
	}
}

func normalizeStatus(status string) domain.CampaignStatus {
	switch status {
	case "ACTIVE":
		return domain.CampaignStatusActive
	case "PAUSED":
		return domain.CampaignStatusPaused
	default:
		return domain.CampaignStatusRemoved
	}
}

type rawInsight struct {
	DateStart   string `json:"date_start"`
	Impressions string `json:"impressions"`
	Clicks      string `json:"clicks"`
	Spend       string `json:"spend"`
	Actions     []struct {
		ActionType string `json:"action_type"`
		Value      string `json:"value"`
	} `json:"actions,omitempty"`
	ActionValues []struct {
		ActionType string `json:"action_type"`
		Value      string `json:"value"`
	} `json:"action_values,omitempty"`
}

type insightsResponse struct {
	Data   []rawInsight `json:"data"`
	Paging struct {
		Next string `json:"next,omitempty"`
	} `json:"paging"`
}

// FetchMetrics busca métricas diárias por campanha na janela informada
func (a *Adapter) FetchMetrics(ctx context.Context, cred *domain.PlatformCredential, campaignIDs []string, window domain.DateRange) ([]*domain.CampaignMetric, error) {
	metrics := make([]*domain.CampaignMetric, 0)

	for _, campaignID := range campaignIDs {
		baseURL := fmt.Sprintf("%s/%s/insights", a.cfg.URL, campaignID)

		timeRange := fmt.Sprintf(`{"since":"%s","until":"%s"}`,
			window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))

		params := url.Values{}
		params.Add("fields", "impressions,clicks,spend,actions,action_values")
		params.Add("time_range", timeRange)
		params.Add("time_increment", "1")
		params.Add("access_token", cred.AccessToken)

		requestURL := baseURL + "?" + params.Encode()

		for requestURL != "" {
			body, err := a.get(ctx, requestURL)
			if err != nil {
				return nil, err
			}

			var response insightsResponse
			if err := json.Unmarshal(body, &response); err != nil {
				return nil, fmt.Errorf("erro ao decodificar JSON: %w", err)
			}

			for _, raw := range response.Data {
				metric, err := normalizeInsight(campaignID, raw)
				if err != nil {
					return nil, err
				}
				metrics = append(metrics, metric)
			}

			requestURL = response.Paging.Next
		}
	}

	return metrics, nil
}

func normalizeInsight(campaignID string, raw rawInsight) (*domain.CampaignMetric, error) {
	date, err := time.Parse("2006-01-02", raw.DateStart)
	if err != nil {
		return nil, fmt.Errorf("erro ao converter data do insight: %w", err)
	}

	impressions, _ := strconv.ParseInt(raw.Impressions, 10, 64)
	clicks, _ := strconv.ParseInt(raw.Clicks, 10, 64)
	spend, _ := strconv.ParseFloat(raw.Spend, 64)

	var conversions int64
	for _, action := range raw.Actions {
		if action.ActionType == "purchase" || action.ActionType == "offsite_conversion" {
			if value, err := strconv.ParseInt(action.Value, 10, 64); err == nil {
				conversions += value
			}
		}
	}

	var revenue float64
	for _, action := range raw.ActionValues {
		if action.ActionType == "purchase" {
			if value, err := strconv.ParseFloat(action.Value, 64); err == nil {
				revenue += value
			}
		}
	}

	payload, _ := json.Marshal(raw)

	return &domain.CampaignMetric{
		ExternalID:  campaignID,
		Date:        date,
		Impressions: impressions,
		Clicks:      clicks,
		Cost:        spend,
		Conversions: conversions,
		Revenue:     revenue,
		RawPayload:  payload,
	}, nil
}

// UpdateCampaignBudget atualiza o orçamento diário da campanha.
// Rejeições bem-formadas da plataforma retornam false sem erro
func (a *Adapter) UpdateCampaignBudget(ctx context.Context, cred *domain.PlatformCredential, campaignID string, budget float64) (bool, error) {
	if budget <= 0 {
		return false, &platforms.ValidationError{Field: "budget", Message: "orçamento deve ser maior que zero"}
	}

	endpoint := fmt.Sprintf("%s/%s", a.cfg.URL, campaignID)

	params := url.Values{}
	params.Add("daily_budget", strconv.FormatInt(int64(budget*100), 10))
	params.Add("access_token", cred.AccessToken)

	return a.mutate(ctx, endpoint, params)
}

// UpdateCampaignStatus ativa ou pausa a campanha
func (a *Adapter) UpdateCampaignStatus(ctx context.Context, cred *domain.PlatformCredential, campaignID string, active bool) (bool, error) {
	endpoint := fmt.Sprintf("%s/%s", a.cfg.URL, campaignID)

	status := "PAUSED"
	if active {
		status = "ACTIVE"
	}

	params := url.Values{}
	params.Add("status", status)
	params.Add("access_token", cred.AccessToken)

	return a.mutate(ctx, endpoint, params)
}

func (a *Adapter) mutate(ctx context.Context, endpoint string, params url.Values) (bool, error) {
	body, err := a.post(ctx, endpoint, params)
	if err != nil {
		var apiErr *platforms.PlatformAPIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			// Requisição bem-formada rejeitada pela validação da plataforma
			return false, nil
		}
		return false, err
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return false, fmt.Errorf("erro ao decodificar JSON: %w", err)
	}

	return result.Success, nil
}
