// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"rentdesk/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for rental record persistence.
var (
	// ErrRentalNotFound is returned when a rental record is not found.
	ErrRentalNotFound = errors.New("rental record not found")
	// ErrRentalSettled is returned when a payment advance is attempted on a
	// record whose remaining days already reached zero.
	ErrRentalSettled = errors.New("rental record already settled")
)

// RentalRecordRepository defines the standard operations for rental record persistence.
type RentalRecordRepository interface {
	// Create persists a new rental record and fills in generated fields.
	Create(ctx context.Context, record *entity.RentalRecord) error

	// FindByID retrieves a single rental record with its renter resolved.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RentalRecord, error)

	// ListAll returns every rental record with renters resolved, newest first.
	ListAll(ctx context.Context) ([]*entity.RentalRecord, error)

	// AdvancePayment records one payment cycle as a single conditional update
	// executed inside the store: amount paid grows by the daily rate, remaining
	// days shrink by one, and the last payment date is stamped. The update only
	// matches records with remaining days left, so concurrent calls can never
	// push a record past settlement or lose a decrement. Returns the updated
	// record, ErrRentalNotFound for an unknown id, or ErrRentalSettled when the
	// record has no remaining days.
	AdvancePayment(ctx context.Context, id uuid.UUID) (*entity.RentalRecord, error)
}
