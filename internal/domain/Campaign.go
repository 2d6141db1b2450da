package domain

import (
	"encoding/json"
	"time"
)

// CampaignStatus é o status normalizado de uma campanha
type CampaignStatus string

const (
	CampaignStatusActive  CampaignStatus = "active"
	CampaignStatusPaused  CampaignStatus = "paused"
	CampaignStatusRemoved CampaignStatus = "removed"
)

// Campaign é a projeção normalizada de uma campanha de qualquer plataforma.
// O payload bruto da plataforma é preservado para auditoria e depuração
type Campaign struct {
	ID           string          `json:"id"`
	TeamID       string          `json:"team_id"`
	Platform     Platform        `json:"platform"`
	ExternalID   string          `json:"external_id"`
	CredentialID string          `json:"credential_id"`
	Name         string          `json:"name"`
	Status       CampaignStatus  `json:"status"`
	Budget       float64         `json:"budget"`
	Currency     string          `json:"currency"`
	RawPayload   json.RawMessage `json:"raw_payload,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
