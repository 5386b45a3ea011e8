// Package entity contains the core business objects of the project.
package entity

// ProviderType identifies an authentication provider.
type ProviderType string

const (
	// ProviderTypeLocal is the name/password credential provider.
	ProviderTypeLocal ProviderType = "local"
	// ProviderTypeGoogle is the Google Sign-In provider.
	ProviderTypeGoogle ProviderType = "google"
)

// String returns the string representation of the ProviderType.
func (p ProviderType) String() string {
	return string(p)
}
