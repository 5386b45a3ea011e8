// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"rentdesk/internal/domain/entity"
)

// ErrRenterNotFound is returned when a renter is not found.
var ErrRenterNotFound = errors.New("renter not found")

// RenterRepository defines the standard operations for renter persistence.
type RenterRepository interface {
	// FindByName retrieves a renter by their unique name.
	FindByName(ctx context.Context, name string) (*entity.Renter, error)

	// Create persists a new renter. Name uniqueness is enforced by the storage
	// layer; a concurrent create surfaces as a duplicate-key domain error that
	// callers resolve by re-fetching.
	Create(ctx context.Context, renter *entity.Renter) error

	// ListAll returns every renter, newest first.
	ListAll(ctx context.Context) ([]*entity.Renter, error)
}
