package kakao

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

type campaignPage struct {
	Content []campaignPayload `json:"content"`
	Last    bool              `json:"last"`
}

type campaignPayload struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Status            string `json:"status"`
	DailyBudgetAmount int64  `json:"dailyBudgetAmount"`
}

type reportResponse struct {
	Data []reportRow `json:"data"`
}

type reportRow struct {
	Dimensions struct {
		CampaignID string `json:"campaignId"`
		Date       string `json:"date"`
	} `json:"dimensions"`
	Metrics struct {
		Imp        int64   `json:"imp"`
		Click      int64   `json:"click"`
		Spending   float64 `json:"spending"`
		Conversion int64   `json:"conversion"`
		ConvValue  float64 `json:"convValue"`
	} `json:"metrics"`
}

// FetchCampaigns pagina a listagem de campanhas da conta
func (a *Adapter) FetchCampaigns(ctx context.Context, cred *domain.PlatformCredential) ([]*domain.Campaign, error) {
	campaigns := []*domain.Campaign{}

	for page := 0; ; page++ {
		endpoint := fmt.Sprintf("%s/campaigns?page=%d", a.cfg.BaseURL, page)

		body, err := a.do(ctx, http.MethodGet, endpoint, cred, nil)
		if err != nil {
			return nil, err
		}

		var result campaignPage
		if err := jsoniter.Unmarshal(body, &result); err != nil {
			return nil, errors.Wrap(err, "erro ao deserializar a listagem de campanhas")
		}

		for _, payload := range result.Content {
			campaigns = append(campaigns, normalizeCampaign(cred, payload))
		}

		if result.Last || len(result.Content) == 0 {
			return campaigns, nil
		}
	}
}

// normalizeCampaign converte o payload do Moment para o modelo normalizado.
// Orçamentos chegam em KRW inteiro, sem subunidade
func normalizeCampaign(cred *domain.PlatformCredential, payload campaignPayload) *domain.Campaign {
	raw, _ := json.Marshal(payload)

	return &domain.Campaign{
		TeamID:       cred.TeamID,
		Platform:     domain.PlatformKakao,
		ExternalID:   fmt.Sprintf("%d", payload.ID),
		CredentialID: cred.ID,
		Name:         payload.Name,
		Status:       normalizeStatus(payload.Status),
		Budget:       float64(payload.DailyBudgetAmount),
		Currency:     "KRW",
		RawPayload:   raw,
	}
}

func normalizeStatus(status string) domain.CampaignStatus {
	switch status {
	case "ON":
		return domain.CampaignStatusActive
	case "OFF":
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
	params.Set("start", window.Start.Format("20060102"))
	params.Set("end", window.End.Format("20060102"))
	params.Set("timeUnit", "DAY")

	endpoint := fmt.Sprintf("%s/campaigns/report?%s", a.cfg.BaseURL, params.Encode())

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
		date, err := time.Parse("20060102", row.Dimensions.Date)
		if err != nil {
			continue
		}

		raw, _ := json.Marshal(row)

		metrics = append(metrics, &domain.CampaignMetric{
			ExternalID:  row.Dimensions.CampaignID,
			Date:        date,
			Impressions: row.Metrics.Imp,
			Clicks:      row.Metrics.Click,
			Cost:        row.Metrics.Spending,
			Conversions: row.Metrics.Conversion,
			Revenue:     row.Metrics.ConvValue,
			RawPayload:  raw,
		})
	}

	return metrics, nil
}

func (a *Adapter) UpdateCampaignBudget(ctx context.Context, cred *domain.PlatformCredential, campaignID string, budget float64) (bool, error) {
	endpoint := fmt.Sprintf("%s/campaigns/%s", a.cfg.BaseURL, campaignID)

	payload := map[string]any{
		"dailyBudgetAmount": int64(budget),
	}

	return a.mutate(ctx, http.MethodPut, endpoint, cred, payload)
}

func (a *Adapter) UpdateCampaignStatus(ctx context.Context, cred *domain.PlatformCredential, campaignID string, active bool) (bool, error) {
	endpoint := fmt.Sprintf("%s/campaigns/%s/onOff", a.cfg.BaseURL, campaignID)

	status := "OFF"
	if active {
		status = "ON"
	}

	payload := map[string]any{
		"config": status,
	}

	return a.mutate(ctx, http.MethodPut, endpoint, cred, payload)
}

func (a *Adapter) mutate(ctx context.Context, method, endpoint string, cred *domain.PlatformCredential, payload any) (bool, error) {
	if _, err := a.do(ctx, method, endpoint, cred, payload); err != nil {
		if isRejection(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
