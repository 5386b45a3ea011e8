package model

import (
	"time"

	"github.com/google/uuid"
)

// RenterModel mirrors the 'renters' table. Renter names are unique so rental
// records can be keyed to a person by name.
type RenterModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Name      string    `gorm:"type:varchar(100);unique;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	RentalRecords []RentalRecordModel `gorm:"foreignKey:RenterID"`
}

// TableName explicitly sets the table name for GORM.
func (RenterModel) TableName() string {
	return "renters"
}

// RentalRecordModel mirrors the 'rental_records' table. Monetary columns are
// integral amounts of the local currency. RemainingDays starts at DaysToPay
// and is decremented by the conditional payment update, never below zero.
type RentalRecordModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	RenterID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductName     string    `gorm:"type:varchar(200);not null"`
	Price           int64     `gorm:"not null"`
	DailyRate       int64     `gorm:"not null"`
	DaysToPay       int       `gorm:"not null"`
	AmountPaid      int64     `gorm:"not null;default:0"`
	RemainingDays   int       `gorm:"not null"`
	LastPaymentDate *time.Time
	StartDate       time.Time `gorm:"not null"`
	EndDate         time.Time `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Renter *RenterModel `gorm:"foreignKey:RenterID"`
}

// TableName explicitly sets the table name for GORM.
func (RentalRecordModel) TableName() string {
	return "rental_records"
}
