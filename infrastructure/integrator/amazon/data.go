package amazon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/adpilot/campaign-sync-api/internal/domain"
)

type campaignPayload struct {
	CampaignID  int64   `json:"campaignId"`
	Name        string  `json:"name"`
	State       string  `json:"state"`
	DailyBudget float64 `json:"dailyBudget"`
}

type reportRequest struct {
	CampaignIDs []string `json:"campaignIds"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Granularity string   `json:"granularity"`
}

type reportRow struct {
	CampaignID  string  `json:"campaignId"`
	Date        string  `json:"date"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"`
	Purchases   int64   `json:"purchases"`
	Sales       float64 `json:"sales"`
}

func (a *Adapter) FetchCampaigns(ctx context.Context, cred *domain.PlatformCredential) ([]*domain.Campaign, error) {
	endpoint := a.cfg.BaseURL + "/v2/sp/campaigns"

	body, err := a.do(ctx, http.MethodGet, endpoint, cred, nil)
	if err != nil {
		return nil, err
	}

	var payloads []campaignPayload
	if err := jsoniter.Unmarshal(body, &payloads); err != nil {
		return nil, errors.Wrap(err, "erro ao deserializar a listagem de campanhas")
	}

	campaigns := make([]*domain.Campaign, 0, len(payloads))
	for _, payload := range payloads {
		campaigns = append(campaigns, normalizeCampaign(cred, payload))
	}

	return campaigns, nil
}

func normalizeCampaign(cred *domain.PlatformCredential, payload campaignPayload) *domain.Campaign {
	raw, _ := json.Marshal(payload)

	return &domain.Campaign{
		TeamID:       cred.TeamID,
		Platform:     domain.PlatformAmazon,
		ExternalID:   fmt.Sprintf("%d", payload.CampaignID),
		CredentialID: cred.ID,
		Name:         payload.Name,
		Status:       normalizeState(payload.State),
		Budget:       payload.DailyBudget,
		Currency:     "USD",
		RawPayload:   raw,
	}
}

func normalizeState(state string) domain.CampaignStatus {
	switch state {
	case "enabled":
		return domain.CampaignStatusActive
	case "paused":
		return domain.CampaignStatusPaused
	default:
		return domain.CampaignStatusRemoved
	}
}

func (a *Adapter) FetchMetrics(ctx context.Context, cred *domain.PlatformCredential, campaignIDs []string, window domain.DateRange) ([]*domain.CampaignMetric, error) {
	if len(campaignIDs) == 0 {
		return nil, nil
	}

	request := reportRequest{
		CampaignIDs: campaignIDs,
		StartDate:   window.Start.Format("20060102"),
		EndDate:     window.End.Format("20060102"),
		Granularity: "DAILY",
	}

	endpoint := a.cfg.BaseURL + "/reporting/campaigns"

	body, err := a.do(ctx, http.MethodPost, endpoint, cred, request)
	if err != nil {
		return nil, err
	}

	var rows []reportRow
	if err := jsoniter.Unmarshal(body, &rows); err != nil {
		return nil, errors.Wrap(err, "erro ao deserializar o relatório de campanhas")
	}

	metrics := make([]*domain.CampaignMetric, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse("20060102", row.Date)
		if err != nil {
			continue
		}

		raw, _ := json.Marshal(row)

		metrics = append(metrics, &domain.CampaignMetric{
			ExternalID:  row.CampaignID,
			Date:        date,
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			Cost:        row.Cost,
			Conversions: row.Purchases,
			Revenue:     row.Sales,
			RawPayload:  raw,
		})
	}

	return metrics, nil
}

func (a *Adapter) UpdateCampaignBudget(ctx context.Context, cred *domain.PlatformCredential, campaignID string, budget float64) (bool, error) {
	payload := []map[string]any{
		{
			"campaignId":  campaignID,
			"dailyBudget": budget,
		},
	}

	return a.mutate(ctx, cred, payload)
}

func (a *Adapter) UpdateCampaignStatus(ctx context.Context, cred *domain.PlatformCredential, campaignID string, active bool) (bool, error) {
	state := "paused"
	if active {
		state = "enabled"
	}

	payload := []map[string]any{
		{
			"campaignId": campaignID,
			"state":      state,
		},
	}

	return a.mutate(ctx, cred, payload)
}

// mutate aplica atualizações parciais no endpoint de campanhas, que
// aceita um lote de patches
func (a *Adapter) mutate(ctx context.Context, cred *domain.PlatformCredential, payload any) (bool, error) {
	endpoint := a.cfg.BaseURL + "/v2/sp/campaigns"

	if _, err := a.do(ctx, http.MethodPut, endpoint, cred, payload); err != nil {
		if isRejection(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
