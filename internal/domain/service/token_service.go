package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type claim values.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims defines the custom claims carried by the signed session tokens.
// The access token embeds the user's identity and role so authorization is
// stateless; role changes take effect when the short-lived access token is
// next refreshed from the user record.
type Claims struct {
	UserID uuid.UUID `json:"uid"`
	Name   string    `json:"name,omitempty"`
	Role   string    `json:"role,omitempty"`
	Type   string    `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateTokens creates a new access token and refresh token for a given user.
	// Only the access token carries the name and role claims.
	GenerateTokens(userID uuid.UUID, name, role string) (accessToken string, refreshToken string, err error)

	// ValidateToken checks the validity of a token string and returns its claims.
	ValidateToken(tokenString string) (*Claims, error)

	// HashToken returns the SHA-256 hex digest of a raw token, the form in
	// which refresh tokens are stored and compared server-side.
	HashToken(token string) string

	// GetRefreshTokenDuration returns the configured duration for refresh tokens.
	GetRefreshTokenDuration() time.Duration
}
