package postgres

import (
	"context"

	"rentdesk/internal/domain/entity"
	domainerrors "rentdesk/internal/domain/errors"
	"rentdesk/internal/domain/repository"
	"rentdesk/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// renterRepository implements the repository.RenterRepository interface.
type renterRepository struct {
	db *gorm.DB
}

// NewRenterRepository is the constructor for renterRepository.
func NewRenterRepository(db *gorm.DB) repository.RenterRepository {
	return &renterRepository{
		db: db,
	}
}

// FindByName retrieves a renter by their unique name.
func (repo *renterRepository) FindByName(ctx context.Context, name string) (*entity.Renter, error) {
	var renterM model.RenterModel
	if err := repo.db.WithContext(ctx).First(&renterM, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRenterNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find renter by name")
	}

	return toRenterDomain(&renterM), nil
}

// Create persists a new renter. The unique name constraint turns a concurrent
// create into a domain conflict error the caller resolves by re-fetching.
func (repo *renterRepository) Create(ctx context.Context, renter *entity.Renter) error {
	renterM := fromRenterDomain(renter)

	if err := repo.db.WithContext(ctx).Create(renterM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrRenterAlreadyExists
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create renter")
	}

	renter.ID = renterM.ID
	renter.CreatedAt = renterM.CreatedAt
	renter.UpdatedAt = renterM.UpdatedAt

	return nil
}

// ListAll returns every renter, newest first.
func (repo *renterRepository) ListAll(ctx context.Context) ([]*entity.Renter, error) {
	var renterModels []model.RenterModel
	if err := repo.db.WithContext(ctx).Order("created_at DESC").Find(&renterModels).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list renters")
	}

	renters := make([]*entity.Renter, 0, len(renterModels))
	for i := range renterModels {
		renters = append(renters, toRenterDomain(&renterModels[i]))
	}

	return renters, nil
}

func toRenterDomain(renterM *model.RenterModel) *entity.Renter {
	return &entity.Renter{
		ID:        renterM.ID,
		Name:      renterM.Name,
		CreatedAt: renterM.CreatedAt,
		UpdatedAt: renterM.UpdatedAt,
	}
}

func fromRenterDomain(renter *entity.Renter) *model.RenterModel {
	return &model.RenterModel{
		ID:   renter.ID,
		Name: renter.Name,
	}
}
