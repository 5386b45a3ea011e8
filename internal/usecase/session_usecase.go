package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenInput carries the refresh token presented for rotation.
type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshTokenOutput returns the rotated token pair.
type RefreshTokenOutput struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LogoutInput carries the refresh token to revoke.
type LogoutInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// SessionInfo is the public view of an active session.
type SessionInfo struct {
	ID        uuid.UUID `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionUsecase manages refresh token rotation and revocation.
type SessionUsecase interface {
	// RefreshToken rotates a valid refresh token into a new token pair. The
	// new access token reflects the user's current role.
	RefreshToken(ctx context.Context, input *RefreshTokenInput) (*RefreshTokenOutput, error)
	// Logout revokes the presented refresh token.
	Logout(ctx context.Context, input *LogoutInput) error
	// LogoutAll revokes every refresh token issued to the user.
	LogoutAll(ctx context.Context, userID uuid.UUID) error
	// GetActiveSessions lists the user's unexpired sessions across devices.
	GetActiveSessions(ctx context.Context, userID uuid.UUID) ([]*SessionInfo, error)
	// RevokeSession ends one session by its ID, if it belongs to the user.
	RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error
}
