package coupang

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/adpilot/campaign-sync-api/internal/domain"
)

type campaignList struct {
	Data []campaignPayload `json:"data"`
}

type campaignPayload struct {
	CampaignID int64   `json:"campaignId"`
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	Budget     float64 `json:"budget"`
}

type reportResponse struct {
	Data []reportRow `json:"data"`
}

type reportRow struct {
	CampaignID  string  `json:"campaignId"`
	Date        string  `json:"date"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	AdSpend     float64 `json:"adSpend"`
	Orders      int64   `json:"orders"`
	SalesAmount float64 `json:"salesAmount"`
}

func (a *Adapter) FetchCampaigns(ctx context.Context, cred *domain.PlatformCredential) ([]*domain.Campaign, error) {
	endpoint := a.cfg.BaseURL + "/v1/campaigns"

	body, err := a.do(ctx, http.MethodGet, endpoint, cred, nil)
	if err != nil {
		return nil, err
	}

	var result campaignList
	if err := jsoniter.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(err, "erro ao deserializar a listagem de campanhas")
	}

	campaigns := make([]*domain.Campaign, 0, len(result.Data))
	for _, payload := range result.Data {
		campaigns = append(campaigns, normalizeCampaign(cred, payload))
	}

	return campaigns, nil
}

func normalizeCampaign(cred *domain.PlatformCredential, payload campaignPayload) *domain.Campaign {
	raw, _ := json.Marshal(payload)

	return &domain.Campaign{
		TeamID:       cred.TeamID,
		Platform:     domain.PlatformCoupang,
		ExternalID:   fmt.Sprintf("%d", payload.CampaignID),
		CredentialID: cred.ID,
		Name:         payload.Title,
		Status:       normalizeStatus(payload.Status),
		Budget:       payload.Budget,
		Currency:     "KRW",
		RawPayload:   raw,
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

func (a *Adapter) FetchMetrics(ctx context.Context, cred *domain.PlatformCredential, campaignIDs []string, window domain.DateRange) ([]*domain.CampaignMetric, error) {
	if len(campaignIDs) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("campaignIds", strings.Join(campaignIDs, ","))
	params.Set("startDate", window.Start.Format("2006-01-02"))
	params.Set("endDate", window.End.Format("2006-01-02"))
	params.Set("groupBy", "DATE")

	endpoint := a.cfg.BaseURL + "/v1/reports/campaigns?" + params.Encode()

	body, err := a.do(ctx, http.MethodGet, endpoint, cred, nil)
	if err != nil {
		return nil, err
	}

	var report reportResponse
	if err := jsoniter.Unmarshal(body, &report); err != nil {
		return nil, errors.Wrap(err, "erro ao deserializar o relatório de campanhas")
	}

	metrics := make([]*domain.CampaignMetric, 0, len(report.Data))
	for _, row := range report.Data {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			continue
		}

		raw, _ := json.Marshal(row)

		metrics = append(metrics, &domain.CampaignMetric{
			ExternalID:  row.CampaignID,
			Date:        date,
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			Cost:        row.AdSpend,
			Conversions: row.Orders,
			Revenue:     row.SalesAmount,
			RawPayload:  raw,
		})
	}

	return metrics, nil
}

func (a *Adapter) UpdateCampaignBudget(ctx context.Context, cred *domain.PlatformCredential, campaignID string, budget float64) (bool, error) {
	endpoint := fmt.Sprintf("%s/v1/campaigns/%s/budget", a.cfg.BaseURL, campaignID)

	payload := map[string]any{
		"budget": int64(budget),
	}

	return a.mutate(ctx, endpoint, cred, payload)
}

func (a *Adapter) UpdateCampaignStatus(ctx context.Context, cred *domain.PlatformCredential, campaignID string, active bool) (bool, error) {
	endpoint := fmt.Sprintf("%s/v1/campaigns/%s/status", a.cfg.BaseURL, campaignID)

	status := "PAUSED"
	if active {
		status = "ACTIVE"
	}

	payload := map[string]any{
		"status": status,
	}

	return a.mutate(ctx, endpoint, cred, payload)
}

func (a *Adapter) mutate(ctx context.Context, endpoint string, cred *domain.PlatformCredential, payload any) (bool, error) {
	if _, err := a.do(ctx, http.MethodPut, endpoint, cred, payload); err != nil {
		if isRejection(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
