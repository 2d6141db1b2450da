package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/adpilot/campaign-sync-api/internal/domain"
)

type campaignPage struct {
	List     []campaignPayload `json:"list"`
	PageInfo struct {
		Page       int `json:"page"`
		TotalPage  int `json:"total_page"`
		TotalCount int `json:"total_number"`
	} `json:"page_info"`
}

type campaignPayload struct {
	CampaignID      string  `json:"campaign_id"`
	CampaignName    string  `json:"campaign_name"`
	OperationStatus string  `json:"operation_status"`
	SecondaryStatus string  `json:"secondary_status"`
	Budget          float64 `json:"budget"`
	Currency        string  `json:"currency"`
}

type reportPage struct {
	List []reportRow `json:"list"`
}

type reportRow struct {
	Dimensions struct {
		CampaignID  string `json:"campaign_id"`
		StatTimeDay string `json:"stat_time_day"`
	} `json:"dimensions"`
	Metrics struct {
		Impressions    string `json:"impressions"`
		Clicks         string `json:"clicks"`
		Spend          string `json:"spend"`
		Conversion     string `json:"conversion"`
		TotalPurchases string `json:"total_purchase_value"`
	} `json:"metrics"`
}

// FetchCampaigns pagina a listagem de campanhas do anunciante
func (a *Adapter) FetchCampaigns(ctx context.Context, cred *domain.PlatformCredential) ([]*domain.Campaign, error) {
	campaigns := []*domain.Campaign{}

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("advertiser_id", cred.AccountID)
		params.Set("page", fmt.Sprintf("%d", page))
		params.Set("page_size", "100")

		endpoint := a.cfg.BaseURL + "/campaign/get/?" + params.Encode()

		data, err := a.do(ctx, http.MethodGet, endpoint, cred.AccessToken, nil)
		if err != nil {
			return nil, err
		}

		var result campaignPage
		if err := jsoniter.Unmarshal(data, &result); err != nil {
			return nil, errors.Wrap(err, "erro ao deserializar a listagem de campanhas")
		}

		for _, payload := range result.List {
			campaigns = append(campaigns, normalizeCampaign(cred, payload))
		}

		if page >= result.PageInfo.TotalPage || len(result.List) == 0 {
			return campaigns, nil
		}
	}
}

func normalizeCampaign(cred *domain.PlatformCredential, payload campaignPayload) *domain.Campaign {
	raw, _ := json.Marshal(payload)

	return &domain.Campaign{
		TeamID:       cred.TeamID,
		Platform:     domain.PlatformTikTok,
		ExternalID:   payload.CampaignID,
		CredentialID: cred.ID,
		Name:         payload.CampaignName,
		Status:       normalizeStatus(payload),
		Budget:       payload.Budget,
		Currency:     payload.Currency,
		RawPayload:   raw,
	}
}

func normalizeStatus(payload campaignPayload) domain.CampaignStatus {
	if payload.SecondaryStatus == "CAMPAIGN_STATUS_DELETE" {
		return domain.CampaignStatusRemoved
	}

	switch payload.OperationStatus {
	case "ENABLE":
		return domain.CampaignStatusActive
	case "DISABLE":
		return domain.CampaignStatusPaused
	default:
		return domain.CampaignStatusRemoved
	}
}

func (a *Adapter) FetchMetrics(ctx context.Context, cred *domain.PlatformCredential, campaignIDs []string, window domain.DateRange) ([]*domain.CampaignMetric, error) {
	if len(campaignIDs) == 0 {
		return nil, nil
	}

	ids, _ := json.Marshal(campaignIDs)

	params := url.Values{}
	params.Set("advertiser_id", cred.AccountID)
	params.Set("report_type", "BASIC")
	params.Set("data_level", "AUCTION_CAMPAIGN")
	params.Set("dimensions", `["campaign_id","stat_time_day"]`)
	params.Set("metrics", `["impressions","clicks","spend","conversion","total_purchase_value"]`)
	params.Set("filters", fmt.Sprintf(`[{"field_name":"campaign_ids","filter_type":"IN","filter_value":%s}]`, ids))
	params.Set("start_date", window.Start.Format("2006-01-02"))
	params.Set("end_date", window.End.Format("2006-01-02"))

	endpoint := a.cfg.BaseURL + "/report/integrated/get/?" + params.Encode()

	data, err := a.do(ctx, http.MethodGet, endpoint, cred.AccessToken, nil)
	if err != nil {
		return nil, err
	}

	var report reportPage
	if err := jsoniter.Unmarshal(data, &report); err != nil {
		return nil, errors.Wrap(err, "erro ao deserializar o relatório de campanhas")
	}

	metrics := make([]*domain.CampaignMetric, 0, len(report.List))
	for _, row := range report.List {
		// stat_time_day chega como "2026-08-30 00:00:00"
		date, err := time.Parse("2006-01-02 15:04:05", row.Dimensions.StatTimeDay)
		if err != nil {
			continue
		}

		raw, _ := json.Marshal(row)

		metrics = append(metrics, &domain.CampaignMetric{
			ExternalID:  row.Dimensions.CampaignID,
			Date:        date,
			Impressions: parseCount(row.Metrics.Impressions),
			Clicks:      parseCount(row.Metrics.Clicks),
			Cost:        parseAmount(row.Metrics.Spend),
			Conversions: parseCount(row.Metrics.Conversion),
			Revenue:     parseAmount(row.Metrics.TotalPurchases),
			RawPayload:  raw,
		})
	}

	return metrics, nil
}

func (a *Adapter) UpdateCampaignBudget(ctx context.Context, cred *domain.PlatformCredential, campaignID string, budget float64) (bool, error) {
	payload := map[string]any{
		"advertiser_id": cred.AccountID,
		"campaign_id":   campaignID,
		"budget":        budget,
	}

	return a.mutate(ctx, a.cfg.BaseURL+"/campaign/update/", cred, payload)
}

func (a *Adapter) UpdateCampaignStatus(ctx context.Context, cred *domain.PlatformCredential, campaignID string, active bool) (bool, error) {
	status := "DISABLE"
	if active {
		status = "ENABLE"
	}

	payload := map[string]any{
		"advertiser_id":    cred.AccountID,
		"campaign_ids":     []string{campaignID},
		"operation_status": status,
	}

	return a.mutate(ctx, a.cfg.BaseURL+"/campaign/status/update/", cred, payload)
}

// as métricas do relatório chegam serializadas como string
func parseCount(value string) int64 {
	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return count
}

func parseAmount(value string) float64 {
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return amount
}

func (a *Adapter) mutate(ctx context.Context, endpoint string, cred *domain.PlatformCredential, payload any) (bool, error) {
	if _, err := a.do(ctx, http.MethodPost, endpoint, cred.AccessToken, payload); err != nil {
		if isRejection(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
