package auth

import (
	"testing"

	"rentdesk/config"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := NewBcryptHasher(nil)

	password := "rentdesk1234"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	// Test correct password
	assert.True(t, hasher.Check(password, hash))

	// Test incorrect password
	assert.False(t, hasher.Check("wrongpassword1", hash))

	// Test empty password
	assert.False(t, hasher.Check("", hash))

	// Test with invalid hash
	assert.False(t, hasher.Check(password, "invalid_hash"))
}

func TestBcryptHasher_WithConfiguredCost(t *testing.T) {
	cfg := &config.Config{Auth: &config.AuthConfig{BcryptCost: 6}} // Lower cost for faster testing
	hasher := NewBcryptHasher(cfg)

	password := "rentdesk1234"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)

	// Verify the hash uses the configured cost
	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.Equal(t, 6, cost)

	assert.True(t, hasher.Check(password, hash))
}

func TestBcryptHasher_ValidatePasswordStrength(t *testing.T) {
	hasher := NewBcryptHasher(nil)

	validPasswords := []string{
		"rentdesk1234",
		"Abcdefg1",
		"p4ssphrase-with-length",
	}
	for _, password := range validPasswords {
		assert.NoError(t, hasher.ValidatePasswordStrength(password), "expected valid password: %s", password)
	}

	testCases := []struct {
		password    string
		expectedErr string
	}{
		{"", "must be at least 8 characters"},
		{"short1", "must be at least 8 characters"},
		{"onlyletters", "must contain both letters and digits"},
		{"1234567890", "must contain both letters and digits"},
		{"!@#$%^&*()", "must contain both letters and digits"},
	}
	for _, tc := range testCases {
		err := hasher.ValidatePasswordStrength(tc.password)
		assert.Error(t, err, "expected error for password: %s", tc.password)
		assert.Contains(t, err.Error(), tc.expectedErr)
	}
}
