package domain

import "time"

// SyncType indica a estratégia de sincronização escolhida para uma credencial
type SyncType string

const (
	SyncTypeFull        SyncType = "full"
	SyncTypeIncremental SyncType = "incremental"
)

// AccountSyncResult é o resultado da sincronização de uma única conta externa
type AccountSyncResult struct {
	CredentialID       string   `json:"credential_id"`
	AccountID          string   `json:"account_id"`
	AccountName        string   `json:"account_name,omitempty"`
	Success            bool     `json:"success"`
	Skipped            bool     `json:"skipped,omitempty"`
	SyncType           SyncType `json:"sync_type,omitempty"`
	CampaignsProcessed int      `json:"campaigns_processed"`
	MetricsProcessed   int      `json:"metrics_processed"`
	Error              string   `json:"error,omitempty"`
}

// SyncResult agrega os resultados por conta de uma plataforma.
// Success só é verdadeiro quando todas as contas sincronizaram sem erro
type SyncResult struct {
	Platform  Platform            `json:"platform"`
	Success   bool                `json:"success"`
	Results   []AccountSyncResult `json:"results"`
	StartedAt time.Time           `json:"started_at"`
	Duration  time.Duration       `json:"duration"`
}

// BatchResult agrega os resultados de todas as plataformas de um time.
// Um lote pode ser parcialmente bem-sucedido: cada plataforma carrega
// seu próprio resultado para que a UI aponte quais contas precisam de atenção
type BatchResult struct {
	TeamID  string                   `json:"team_id"`
	Success bool                     `json:"success"`
	Results map[Platform]*SyncResult `json:"results"`
}
