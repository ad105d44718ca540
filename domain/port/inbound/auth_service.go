package inbound

import "time"

// TokenClaims is what a validated API token carries
type TokenClaims struct {
	Subject   string    `json:"subject"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthService interface {
	GenerateToken(subject string, issuedAt time.Time) (string, error)
	ValidateToken(token string) (*TokenClaims, error)
}
