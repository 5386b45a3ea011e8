// Package usecase defines the application-level input/output contracts.
package usecase

import (
	"context"
	"time"

	"rentdesk/internal/domain/entity"

	"github.com/google/uuid"
)

// RegisterUserInput carries the registration form payload.
type RegisterUserInput struct {
	Name            string `json:"name" validate:"required,min=1,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// RegisterUserOutput returns the created account.
type RegisterUserOutput struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginInput carries the credential login payload. Login is by account name,
// not email.
type LoginInput struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginOutput returns the token pair issued for a successful login.
type LoginOutput struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	User         *UserInfo `json:"user"`
}

// UserInfo is the public view of a user returned by auth endpoints.
type UserInfo struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// GoogleCallbackInput carries the ID token posted back from the Google
// sign-in flow.
type GoogleCallbackInput struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UserUsecase handles account registration and sign-in.
type UserUsecase interface {
	// Register creates a local account with a name/password credential.
	Register(ctx context.Context, input *RegisterUserInput) (*RegisterUserOutput, error)
	// Login verifies a local credential and issues a token pair.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	// GoogleCallback verifies a Google ID token, provisioning or linking the
	// account as needed, and issues a token pair.
	GoogleCallback(ctx context.Context, input *GoogleCallbackInput) (*LoginOutput, error)
	// GetProfile returns the public view of an existing user.
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserInfo, error)
}

// NewUserInfo builds the public view from a domain user.
func NewUserInfo(user *entity.User) *UserInfo {
	return &UserInfo{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role.String(),
	}
}
