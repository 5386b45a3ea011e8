// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing a unique account.
// Password material is not stored here; it lives on the Authentication
// records linked to this user, so an account created through Google
// Sign-In simply has no local credential.
type User struct {
	ID        uuid.UUID // The Global Unique Identifier (GUID) for the user.
	Name      string    // The user's unique display name, used as the credential sign-in identifier.
	Email     string    // The user's contact email, used to link external identities.
	Role      Role      // The user's role. Defaults to RoleUser; only manual assignment promotes to admin.
	CreatedAt time.Time // Timestamp of when this user account was created.
	UpdatedAt time.Time // Timestamp of the last modification to this user's data.
}
