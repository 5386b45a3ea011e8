package google

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"rentdesk/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

const testClientID = "test-client-id.apps.googleusercontent.com"

// newTestService swaps the key-set validator for a stub so claim policy can
// be tested offline. The stub stands in for signature verification: when it
// errors, the token must be rejected regardless of its claims.
func newTestService(validate tokenValidator) *AuthServiceImpl {
	cfg := &config.Config{GoogleOAuth: &config.GoogleOAuthConfig{ClientID: testClientID}}
	svc := NewAuthService(cfg, slog.Default()).(*AuthServiceImpl)
	svc.validate = validate

	return svc
}

func stubValidator(payload *idtoken.Payload, err error) tokenValidator {
	return func(_ context.Context, _, _ string) (*idtoken.Payload, error) {
		return payload, err
	}
}

func validPayload() *idtoken.Payload {
	return &idtoken.Payload{
		Issuer:   "https://accounts.google.com",
		Subject:  "1234567890",
		Audience: testClientID,
		Expires:  time.Now().Add(time.Hour).Unix(),
		IssuedAt: time.Now().Unix(),
		Claims: map[string]any{
			"email":          "user@example.com",
			"email_verified": true,
			"name":           "Test User",
			"picture":        "https://example.com/avatar.png",
		},
	}
}

func TestVerifyIDToken_Valid(t *testing.T) {
	svc := newTestService(stubValidator(validPayload(), nil))

	user, err := svc.VerifyIDToken(context.Background(), "signed-token")
	require.NoError(t, err)

	assert.Equal(t, "1234567890", user.ID)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, "Test User", user.Name)
	assert.True(t, user.EmailVerified)
}

func TestVerifyIDToken_SignatureRejected(t *testing.T) {
	// A token whose signature does not verify against Google's key set must
	// be rejected even when its payload claims are perfect.
	svc := newTestService(stubValidator(nil, errors.New("idtoken: signature verification failed")))

	_, err := svc.VerifyIDToken(context.Background(), "forged-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ID token")
}

func TestVerifyIDToken_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *idtoken.Payload)
	}{
		{
			name:   "wrong issuer",
			mutate: func(p *idtoken.Payload) { p.Issuer = "https://evil.example.com" },
		},
		{
			name:   "wrong audience",
			mutate: func(p *idtoken.Payload) { p.Audience = "other-client-id" },
		},
		{
			name:   "expired",
			mutate: func(p *idtoken.Payload) { p.Expires = time.Now().Add(-time.Hour).Unix() },
		},
		{
			name:   "email not verified",
			mutate: func(p *idtoken.Payload) { p.Claims["email_verified"] = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(payload)
			svc := newTestService(stubValidator(payload, nil))

			_, err := svc.VerifyIDToken(context.Background(), "signed-token")
			require.Error(t, err)
		})
	}
}

func TestVerifyIDToken_AlternateIssuerAccepted(t *testing.T) {
	payload := validPayload()
	payload.Issuer = "accounts.google.com"
	svc := newTestService(stubValidator(payload, nil))

	_, err := svc.VerifyIDToken(context.Background(), "signed-token")
	assert.NoError(t, err)
}
