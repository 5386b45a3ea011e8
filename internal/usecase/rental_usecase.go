package usecase

import (
	"context"
	"time"

	"rentdesk/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateRentalInput carries the new rental record form payload. Monetary
// amounts are integral units of the local currency.
type CreateRentalInput struct {
	RenterName  string    `json:"renterName" validate:"required,min=1,max=100"`
	ProductName string    `json:"productName" validate:"required,min=1,max=200"`
	Price       int64     `json:"price" validate:"required,gt=0"`
	DailyRate   int64     `json:"dailyRate" validate:"required,gt=0"`
	DaysToPay   int       `json:"daysToPay" validate:"required,gt=0"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
}

// RentalRecordOutput is the API view of a rental record.
type RentalRecordOutput struct {
	ID              uuid.UUID  `json:"id"`
	RenterID        uuid.UUID  `json:"renterId"`
	RenterName      string     `json:"renterName"`
	ProductName     string     `json:"productName"`
	Price           int64      `json:"price"`
	DailyRate       int64      `json:"dailyRate"`
	DaysToPay       int        `json:"daysToPay"`
	AmountPaid      int64      `json:"amountPaid"`
	RemainingDays   int        `json:"remainingDays"`
	Settled         bool       `json:"settled"`
	LastPaymentDate *time.Time `json:"lastPaymentDate"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// RenterOutput is the API view of a renter.
type RenterOutput struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// RentalUsecase handles the rental record lifecycle: creation, listing and
// the daily payment decrement.
type RentalUsecase interface {
	// CreateRental creates a rental record, provisioning the renter by name
	// when no renter with that name exists yet.
	CreateRental(ctx context.Context, input *CreateRentalInput) (*RentalRecordOutput, error)
	// ListRentals returns all rental records, newest first.
	ListRentals(ctx context.Context) ([]*RentalRecordOutput, error)
	// AdvancePayment registers one day's payment on the record: amountPaid
	// grows by dailyRate and remainingDays shrinks by one. Settled records
	// are rejected.
	AdvancePayment(ctx context.Context, rentalID uuid.UUID) (*RentalRecordOutput, error)
	// ListRenters returns all renters, newest first.
	ListRenters(ctx context.Context) ([]*RenterOutput, error)
}

// NewRentalRecordOutput builds the API view from a domain record.
func NewRentalRecordOutput(record *entity.RentalRecord) *RentalRecordOutput {
	out := &RentalRecordOutput{
		ID:              record.ID,
		RenterID:        record.RenterID,
		ProductName:     record.ProductName,
		Price:           record.Price,
		DailyRate:       record.DailyRate,
		DaysToPay:       record.DaysToPay,
		AmountPaid:      record.AmountPaid,
		RemainingDays:   record.RemainingDays,
		Settled:         record.Settled(),
		LastPaymentDate: record.LastPaymentDate,
		StartDate:       record.StartDate,
		EndDate:         record.EndDate,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
	if record.Renter != nil {
		out.RenterName = record.Renter.Name
	}

	return out
}
