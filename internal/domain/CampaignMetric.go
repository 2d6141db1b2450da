package domain

import (
	"encoding/json"
	"time"
)

// CampaignMetric é a métrica diária normalizada de uma campanha.
// A chave natural é (campaign_id, date): reingestões do mesmo dia sobrescrevem
type CampaignMetric struct {
	ID          string          `json:"id"`
	CampaignID  string          `json:"campaign_id"`
	ExternalID  string          `json:"external_id"`
	Date        time.Time       `json:"date"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Cost        float64         `json:"cost"`
	Conversions int64           `json:"conversions"`
	Revenue     float64         `json:"revenue"`
	RawPayload  json.RawMessage `json:"raw_payload,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DateRange é a janela de datas usada na busca de métricas
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days retorna o número de dias cobertos pela janela, inclusivo
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}
