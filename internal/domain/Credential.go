package domain

import "time"

// TokenSet representa o conjunto de tokens retornado por uma plataforma
// após a troca de um código de autorização ou a renovação de um token
type TokenSet struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Scope        string     `json:"scope,omitempty"`
}

// PlatformCredential representa as credenciais OAuth de uma conta externa
// de anúncios, únicas por (team, platform, account)
type PlatformCredential struct {
	ID           string     `json:"id"`
	TeamID       string     `json:"team_id"`
	Platform     Platform   `json:"platform"`
	AccountID    string     `json:"account_id"`
	AccountName  string     `json:"account_name"`
	AccessToken  string     `json:"-"`
	RefreshToken *string    `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Scope        string     `json:"scope,omitempty"`
	Active       bool       `json:"active"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	LastError    *string    `json:"last_error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TokenSet devolve os tokens atualmente persistidos na credencial.
// É o valor "observado" usado no compare-and-set do repositório
func (c *PlatformCredential) TokenSet() TokenSet {
	ts := TokenSet{
		AccessToken: c.AccessToken,
		ExpiresAt:   c.ExpiresAt,
		Scope:       c.Scope,
	}
	if c.RefreshToken != nil {
		ts.RefreshToken = *c.RefreshToken
	}
	return ts
}

// NearExpiry indica se o token precisa ser renovado antes do próximo uso.
// Tokens sem data de expiração nunca expiram (plataformas com token fixo)
func (c *PlatformCredential) NearExpiry(now time.Time, buffer time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return now.After(c.ExpiresAt.Add(-buffer))
}
