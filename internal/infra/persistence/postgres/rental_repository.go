package postgres

import (
	"context"
	"time"

	"rentdesk/internal/domain/entity"
	domainerrors "rentdesk/internal/domain/errors"
	"rentdesk/internal/domain/repository"
	"rentdesk/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// rentalRecordRepository implements the repository.RentalRecordRepository interface.
type rentalRecordRepository struct {
	db *gorm.DB
}

// NewRentalRecordRepository is the constructor for rentalRecordRepository.
func NewRentalRecordRepository(db *gorm.DB) repository.RentalRecordRepository {
	return &rentalRecordRepository{
		db: db,
	}
}

// Create persists a new rental record and fills in generated fields.
func (repo *rentalRecordRepository) Create(ctx context.Context, record *entity.RentalRecord) error {
	recordM := fromRentalRecordDomain(record)

	if err := repo.db.WithContext(ctx).Create(recordM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrRentalCreationFailed.WrapMessage("invalid renter reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrRentalCreationFailed.WrapMessage("missing required rental information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create rental record")
	}

	record.ID = recordM.ID
	record.CreatedAt = recordM.CreatedAt
	record.UpdatedAt = recordM.UpdatedAt

	return nil
}

// FindByID retrieves a single rental record with its renter resolved.
func (repo *rentalRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RentalRecord, error) {
	var recordM model.RentalRecordModel
	err := repo.db.WithContext(ctx).
		Preload("Renter").
		First(&recordM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRentalNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find rental record by id")
	}

	return toRentalRecordDomain(&recordM), nil
}

// ListAll returns every rental record with renters resolved, newest first.
func (repo *rentalRecordRepository) ListAll(ctx context.Context) ([]*entity.RentalRecord, error) {
	var recordModels []model.RentalRecordModel
	err := repo.db.WithContext(ctx).
		Preload("Renter").
		Order("created_at DESC").
		Find(&recordModels).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list rental records")
	}

	records := make([]*entity.RentalRecord, 0, len(recordModels))
	for i := range recordModels {
		records = append(records, toRentalRecordDomain(&recordModels[i]))
	}

	return records, nil
}

// AdvancePayment records one payment cycle as a single conditional UPDATE.
// The remaining_days > 0 guard makes concurrent advances serialize on the
// row: each matched update moves the record exactly one step, and once the
// counter reaches zero no further update can match. A zero row count is then
// disambiguated with a follow-up read.
func (repo *rentalRecordRepository) AdvancePayment(ctx context.Context, id uuid.UUID) (*entity.RentalRecord, error) {
	now := time.Now()

	result := repo.db.WithContext(ctx).
		Model(&model.RentalRecordModel{}).
		Where("id = ? AND remaining_days > 0", id).
		Updates(map[string]any{
			"amount_paid":       gorm.Expr("amount_paid + daily_rate"),
			"remaining_days":    gorm.Expr("remaining_days - 1"),
			"last_payment_date": now,
			"updated_at":        now,
		})
	if result.Error != nil {
		return nil, domainerrors.NewDatabaseExecuteError(result.Error, "failed to advance rental payment")
	}

	if result.RowsAffected == 0 {
		record, err := repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if record.Settled() {
			return nil, repository.ErrRentalSettled
		}

		// The guarded update matched nothing yet the record has days left.
		return nil, domainerrors.NewDatabaseExecuteError(
			errors.New("conditional update matched no rows"),
			"failed to advance rental payment",
		)
	}

	return repo.FindByID(ctx, id)
}

func toRentalRecordDomain(recordM *model.RentalRecordModel) *entity.RentalRecord {
	record := &entity.RentalRecord{
		ID:              recordM.ID,
		RenterID:        recordM.RenterID,
		ProductName:     recordM.ProductName,
		Price:           recordM.Price,
		DailyRate:       recordM.DailyRate,
		DaysToPay:       recordM.DaysToPay,
		AmountPaid:      recordM.AmountPaid,
		RemainingDays:   recordM.RemainingDays,
		LastPaymentDate: recordM.LastPaymentDate,
		StartDate:       recordM.StartDate,
		EndDate:         recordM.EndDate,
		CreatedAt:       recordM.CreatedAt,
		UpdatedAt:       recordM.UpdatedAt,
	}
	if recordM.Renter != nil {
		record.Renter = toRenterDomain(recordM.Renter)
	}

	return record
}

func fromRentalRecordDomain(record *entity.RentalRecord) *model.RentalRecordModel {
	return &model.RentalRecordModel{
		ID:              record.ID,
		RenterID:        record.RenterID,
		ProductName:     record.ProductName,
		Price:           record.Price,
		DailyRate:       record.DailyRate,
		DaysToPay:       record.DaysToPay,
		AmountPaid:      record.AmountPaid,
		RemainingDays:   record.RemainingDays,
		LastPaymentDate: record.LastPaymentDate,
		StartDate:       record.StartDate,
		EndDate:         record.EndDate,
	}
}
