// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"rentdesk/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	// Only the OAuth linking flow looks users up this way.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user entity to the storage. Uniqueness of name
	// and email is enforced by the storage layer, not pre-checked here.
	Create(ctx context.Context, user *entity.User) error

	// AcquireSessionMutex locks the user's row for the rest of the current
	// transaction, serializing concurrent session-limit checks for the same
	// user. Must be called inside a transaction.
	AcquireSessionMutex(ctx context.Context, id uuid.UUID) error
}
