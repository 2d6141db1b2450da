package google

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adpilot/campaign-sync-api/internal/domain"
)

func TestNormalizeCampaign(t *testing.T) {
	cred := &domain.PlatformCredential{
		ID:        "CRED001",
		TeamID:    "TEAM001",
		Platform:  domain.PlatformGoogle,
		AccountID: "123-456-7890",
	}

	var row searchRow
	row.Campaign.ID = "987654"
	row.Campaign.Name = "Campanha de verão"
	row.Campaign.Status = "ENABLED"
	row.CampaignBudget.AmountMicros = "150000000"
	row.Customer.CurrencyCode = "BRL"

	campaign := normalizeCampaign(cred, row)

	assert.Equal(t, "TEAM001", campaign.TeamID)
	assert.Equal(t, domain.PlatformGoogle, campaign.Platform)
	assert.Equal(t, "987654", campaign.ExternalID)
	assert.Equal(t, "CRED001", campaign.CredentialID)
	assert.Equal(t, "Campanha de verão", campaign.Name)
	assert.Equal(t, domain.CampaignStatusActive, campaign.Status)
	assert.Equal(t, 150.0, campaign.Budget)
	assert.Equal(t, "BRL", campaign.Currency)
	assert.NotEmpty(t, campaign.RawPayload)
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   domain.CampaignStatus
	}{
		{name: "Campanha habilitada", status: "ENABLED", want: domain.CampaignStatusActive},
		{name: "Campanha pausada", status: "PAUSED", want: domain.CampaignStatusPaused},
		{name: "Campanha removida", status: "REMOVED", want: domain.CampaignStatusRemoved},
		{name: "Status desconhecido vira removida", status: "UNKNOWN", want: domain.CampaignStatusRemoved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeStatus(tt.status))
		})
	}
}

func TestParseMicros(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  float64
	}{
		{name: "Valor inteiro em micros", value: "150000000", want: 150.0},
		{name: "Valor fracionário em micros", value: "12500000", want: 12.5},
		{name: "Zero", value: "0", want: 0},
		{name: "Valor inválido vira zero", value: "abc", want: 0},
		{name: "Vazio vira zero", value: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseMicros(tt.value))
		})
	}
}

func TestJoinQuoted(t *testing.T) {
	assert.Equal(t, `'111', '222', '333'`, joinQuoted([]string{"111", "222", "333"}))
	assert.Equal(t, `'111'`, joinQuoted([]string{"111"}))
}
