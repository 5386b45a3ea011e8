// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Renter is the accountable party of a rental. Rental records reference a
// Renter by ID instead of carrying a free-text name, so the same person's
// rentals stay linked even if the display name is corrected later.
type Renter struct {
	ID        uuid.UUID // The unique ID for this renter.
	Name      string    // The renter's unique name.
	CreatedAt time.Time // Timestamp of when this renter was first recorded.
	UpdatedAt time.Time // Timestamp of the last modification.
}

// RentalRecord tracks one rented product and its payment progress over a
// fixed day count. AmountPaid only ever grows and RemainingDays only ever
// shrinks, floored at zero; both are advanced one cycle at a time by the
// payment operation.
type RentalRecord struct {
	ID              uuid.UUID  // The unique ID for this rental record.
	RenterID        uuid.UUID  // Links the record to the accountable Renter.
	Renter          *Renter    // The resolved renter, populated on reads.
	ProductName     string     // The rented product's name.
	Price           int64      // Total contracted price. Not derived server-side; the dashboard submits it.
	DailyRate       int64      // Amount accrued per payment cycle.
	DaysToPay       int        // Total contracted days.
	AmountPaid      int64      // Accumulated payments. Monotonically non-decreasing.
	RemainingDays   int        // Days left to pay. Initialized to DaysToPay, counts down to zero.
	LastPaymentDate *time.Time // When the last payment cycle was recorded; nil until the first payment.
	StartDate       time.Time  // Rental period start.
	EndDate         time.Time  // Rental period end.
	CreatedAt       time.Time  // Timestamp of when this record was created.
	UpdatedAt       time.Time  // Timestamp of the last modification.
}

// Settled reports whether the record has reached its terminal state.
// A settled record accepts no further payment advances.
func (r *RentalRecord) Settled() bool {
	return r.RemainingDays <= 0
}
