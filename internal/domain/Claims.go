package domain

import "github.com/golang-jwt/jwt/v5"

// Claims são as claims do JWT emitido pelo serviço de identidade.
// A API só consome tokens já emitidos; login e cadastro vivem fora deste serviço
type Claims struct {
	UserID string `json:"user_id"`
	TeamID string `json:"team_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin indica se o usuário pode disparar operações administrativas,
// como execução manual de sincronizações
func (c *Claims) IsAdmin() bool {
	return c.Role == "admin" || c.Role == "owner"
}
