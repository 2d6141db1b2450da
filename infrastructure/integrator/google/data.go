package google

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/adpilot/campaign-sync-api/internal/domain"
)

const microsPerUnit = 1_000_000

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Results       []searchRow `json:"results"`
	NextPageToken string      `json:"nextPageToken"`
}

type searchRow struct {
	Campaign struct {
		ResourceName string `json:"resourceName"`
		ID           string `json:"id"`
		Name         string `json:"name"`
		Status       string `json:"status"`
	} `json:"campaign"`
	CampaignBudget struct {
		AmountMicros string `json:"amountMicros"`
	} `json:"campaignBudget"`
	Customer struct {
		CurrencyCode string `json:"currencyCode"`
	} `json:"customer"`
	Metrics struct {
		Impressions      string  `json:"impressions"`
		Clicks           string  `json:"clicks"`
		CostMicros       string  `json:"costMicros"`
		Conversions      float64 `json:"conversions"`
		ConversionsValue float64 `json:"conversionsValue"`
	} `json:"metrics"`
	Segments struct {
		Date string `json:"date"`
	} `json:"segments"`
}

func (a *Adapter) searchURL(accountID string) string {
	return fmt.Sprintf("%s/%s/customers/%s/googleAds:search", a.cfg.BaseURL, a.cfg.Version, accountID)
}

// search pagina a consulta GAQL até esgotar os resultados
func (a *Adapter) search(ctx context.Context, cred *domain.PlatformCredential, query string) ([]searchRow, error) {
	rows := []searchRow{}
	pageToken := ""

	for {
		payload := map[string]string{"query": query}
		if pageToken != "" {
			payload["pageToken"] = pageToken
		}

		body, err := a.postJSON(ctx, a.searchURL(cred.AccountID), cred.AccessToken, payload)
		if err != nil {
			return nil, err
		}

		var page searchResponse
		if err := jsoniter.Unmarshal(body, &page); err != nil {
			return nil, errors.Wrap(err, "erro ao deserializar a resposta de busca")
		}

		rows = append(rows, page.Results...)

		if page.NextPageToken == "" {
			return rows, nil
		}
		pageToken = page.NextPageToken
	}
}

func (a *Adapter) FetchCampaigns(ctx context.Context, cred *domain.PlatformCredential) ([]*domain.Campaign, error) {
	query := `SELECT campaign.id, campaign.name, campaign.status, campaign_budget.amount_micros, customer.currency_code
		FROM campaign
		WHERE campaign.status != 'UNKNOWN'`

	rows, err := a.search(ctx, cred, query)
	if err != nil {
		return nil, err
	}

	campaigns := make([]*domain.Campaign, 0, len(rows))
	for _, row := range rows {
		campaigns = append(campaigns, normalizeCampaign(cred, row))
	}

	return campaigns, nil
}

// normalizeCampaign converte a linha GAQL para o modelo normalizado.
// Valores monetários chegam em micros
func normalizeCampaign(cred *domain.PlatformCredential, row searchRow) *domain.Campaign {
	raw, _ := json.Marshal(row)

	return &domain.Campaign{
		TeamID:       cred.TeamID,
		Platform:     domain.PlatformGoogle,
		ExternalID:   row.Campaign.ID,
		CredentialID: cred.ID,
		Name:         row.Campaign.Name,
		Status:       normalizeStatus(row.Campaign.Status),
		Budget:       parseMicros(row.CampaignBudget.AmountMicros),
		Currency:     row.Customer.CurrencyCode,
		RawPayload:   raw,
	}
}

func normalizeStatus(status string) domain.CampaignStatus {
	switch status {
	case "ENABLED":
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

	query := fmt.Sprintf(`SELECT campaign.id, segments.date, metrics.impressions, metrics.clicks, metrics.cost_micros, metrics.conversions, metrics.conversions_value
		FROM campaign
		WHERE campaign.id IN (%s)
		AND segments.date BETWEEN '%s' AND '%s'`,
		joinQuoted(campaignIDs),
		window.Start.Format("2006-01-02"),
		window.End.Format("2006-01-02"),
	)

	rows, err := a.search(ctx, cred, query)
	if err != nil {
		return nil, err
	}

	metrics := make([]*domain.CampaignMetric, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse("2006-01-02", row.Segments.Date)
		if err != nil {
			continue
		}

		raw, _ := json.Marshal(row)

		metrics = append(metrics, &domain.CampaignMetric{
			ExternalID:  row.Campaign.ID,
			Date:        date,
			Impressions: parseCount(row.Metrics.Impressions),
			Clicks:      parseCount(row.Metrics.Clicks),
			Cost:        parseMicros(row.Metrics.CostMicros),
			Conversions: int64(row.Metrics.Conversions),
			Revenue:     row.Metrics.ConversionsValue,
			RawPayload:  raw,
		})
	}

	return metrics, nil
}

func (a *Adapter) UpdateCampaignBudget(ctx context.Context, cred *domain.PlatformCredential, campaignID string, budget float64) (bool, error) {
	// O orçamento vive em um recurso próprio; a API resolve a associação
	// a partir do resource name da campanha
	endpoint := fmt.Sprintf("%s/%s/customers/%s/campaignBudgets:mutate", a.cfg.BaseURL, a.cfg.Version, cred.AccountID)

	budgetResource, err := a.budgetResourceName(ctx, cred, campaignID)
	if err != nil {
		return false, err
	}

	payload := map[string]any{
		"operations": []map[string]any{
			{
				"update": map[string]any{
					"resourceName": budgetResource,
					"amountMicros": fmt.Sprintf("%d", int64(budget*microsPerUnit)),
				},
				"updateMask": "amount_micros",
			},
		},
	}

	return a.mutate(ctx, cred, endpoint, payload)
}

func (a *Adapter) UpdateCampaignStatus(ctx context.Context, cred *domain.PlatformCredential, campaignID string, active bool) (bool, error) {
	endpoint := fmt.Sprintf("%s/%s/customers/%s/campaigns:mutate", a.cfg.BaseURL, a.cfg.Version, cred.AccountID)

	status := "PAUSED"
	if active {
		status = "ENABLED"
	}

	payload := map[string]any{
		"operations": []map[string]any{
			{
				"update": map[string]any{
					"resourceName": fmt.Sprintf("customers/%s/campaigns/%s", cred.AccountID, campaignID),
					"status":       status,
				},
				"updateMask": "status",
			},
		},
	}

	return a.mutate(ctx, cred, endpoint, payload)
}

// budgetResourceName resolve o recurso de orçamento associado à campanha
func (a *Adapter) budgetResourceName(ctx context.Context, cred *domain.PlatformCredential, campaignID string) (string, error) {
	query := fmt.Sprintf(`SELECT campaign.id, campaign_budget.resource_name FROM campaign WHERE campaign.id = '%s'`, campaignID)

	body, err := a.postJSON(ctx, a.searchURL(cred.AccountID), cred.AccessToken, searchRequest{Query: query})
	if err != nil {
		return "", err
	}

	var page struct {
		Results []struct {
			CampaignBudget struct {
				ResourceName string `json:"resourceName"`
			} `json:"campaignBudget"`
		} `json:"results"`
	}
	if err := jsoniter.Unmarshal(body, &page); err != nil {
		return "", errors.Wrap(err, "erro ao deserializar a resposta de busca")
	}
	if len(page.Results) == 0 {
		return "", errors.Errorf("campanha %s não encontrada na conta %s", campaignID, cred.AccountID)
	}

	return page.Results[0].CampaignBudget.ResourceName, nil
}

// parseMicros converte valores monetários em micros (string) para unidades
func parseMicros(value string) float64 {
	micros, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return float64(micros) / microsPerUnit
}

func parseCount(value string) int64 {
	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return count
}

func joinQuoted(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "'" + id + "'"
	}
	return strings.Join(quoted, ", ")
}

// mutate aplica a operação e traduz rejeições bem-formadas em (false, nil)
func (a *Adapter) mutate(ctx context.Context, cred *domain.PlatformCredential, endpoint string, payload any) (bool, error) {
	if _, err := a.postJSON(ctx, endpoint, cred.AccessToken, payload); err != nil {
		if isRejection(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
