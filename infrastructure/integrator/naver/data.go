package naver

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

type campaignPayload struct {
	NccCampaignID string  `json:"nccCampaignId"`
	Name          string  `json:"name"`
	UserLock      bool    `json:"userLock"`
	Status        string  `json:"status"`
	DailyBudget   float64 `json:"dailyBudget"`
}

type statRow struct {
	ID   string `json:"id"`
	Data []struct {
		DateStart string  `json:"dateStart"`
		ImpCnt    int64   `json:"impCnt"`
		ClkCnt    int64   `json:"clkCnt"`
		SalesAmt  float64 `json:"salesAmt"`
		Ccnt      int64   `json:"ccnt"`
		ConvAmt   float64 `json:"convAmt"`
	} `json:"data"`
}

func (a *Adapter) FetchCampaigns(ctx context.Context, cred *domain.PlatformCredential) ([]*domain.Campaign, error) {
	endpoint := a.cfg.BaseURL + "/ncc/campaigns"

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

// normalizeCampaign converte o payload do Search Ad para o modelo normalizado.
// A pausa manual é expressa por userLock, não pelo campo status
func normalizeCampaign(cred *domain.PlatformCredential, payload campaignPayload) *domain.Campaign {
	raw, _ := json.Marshal(payload)

	return &domain.Campaign{
		TeamID:       cred.TeamID,
		Platform:     domain.PlatformNaver,
		ExternalID:   payload.NccCampaignID,
		CredentialID: cred.ID,
		Name:         payload.Name,
		Status:       normalizeStatus(payload),
		Budget:       payload.DailyBudget,
		Currency:     "KRW",
		RawPayload:   raw,
	}
}

func normalizeStatus(payload campaignPayload) domain.CampaignStatus {
	if payload.Status == "DELETED" {
		return domain.CampaignStatusRemoved
	}
	if payload.UserLock {
		return domain.CampaignStatusPaused
	}
	return domain.CampaignStatusActive
}

func (a *Adapter) FetchMetrics(ctx context.Context, cred *domain.PlatformCredential, campaignIDs []string, window domain.DateRange) ([]*domain.CampaignMetric, error) {
	if len(campaignIDs) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("ids", strings.Join(campaignIDs, ","))
	params.Set("fields", `["impCnt","clkCnt","salesAmt","ccnt","convAmt"]`)
	params.Set("timeRange", fmt.Sprintf(`{"since":"%s","until":"%s"}`,
		window.Start.Format("2006-01-02"), window.End.Format("2006-01-02")))
	params.Set("timeIncrement", "1")

	endpoint := a.cfg.BaseURL + "/stats?" + params.Encode()

	body, err := a.do(ctx, http.MethodGet, endpoint, cred, nil)
	if err != nil {
		return nil, err
	}

	var rows []statRow
	if err := jsoniter.Unmarshal(body, &rows); err != nil {
		return nil, errors.Wrap(err, "erro ao deserializar as estatísticas de campanhas")
	}

	metrics := []*domain.CampaignMetric{}
	for _, row := range rows {
		for _, point := range row.Data {
			date, err := time.Parse("2006-01-02", point.DateStart)
			if err != nil {
				continue
			}

			raw, _ := json.Marshal(point)

			metrics = append(metrics, &domain.CampaignMetric{
				ExternalID:  row.ID,
				Date:        date,
				Impressions: point.ImpCnt,
				Clicks:      point.ClkCnt,
				Cost:        point.SalesAmt,
				Conversions: point.Ccnt,
				Revenue:     point.ConvAmt,
				RawPayload:  raw,
			})
		}
	}

	return metrics, nil
}

func (a *Adapter) UpdateCampaignBudget(ctx context.Context, cred *domain.PlatformCredential, campaignID string, budget float64) (bool, error) {
	endpoint := fmt.Sprintf("%s/ncc/campaigns/%s?fields=budget", a.cfg.BaseURL, campaignID)

	payload := map[string]any{
		"nccCampaignId":  campaignID,
		"dailyBudget":    budget,
		"useDailyBudget": true,
	}

	return a.mutate(ctx, endpoint, cred, payload)
}

func (a *Adapter) UpdateCampaignStatus(ctx context.Context, cred *domain.PlatformCredential, campaignID string, active bool) (bool, error) {
	endpoint := fmt.Sprintf("%s/ncc/campaigns/%s?fields=userLock", a.cfg.BaseURL, campaignID)

	payload := map[string]any{
		"nccCampaignId": campaignID,
		"userLock":      !active,
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
