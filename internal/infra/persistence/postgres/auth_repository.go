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

// authRepository implements the repository.AuthRepository interface.
type authRepository struct {
	db *gorm.DB
}

// NewAuthRepository is the constructor for authRepository.
func NewAuthRepository(db *gorm.DB) repository.AuthRepository {
	return &authRepository{
		db: db,
	}
}

// CreateAuthentication persists a new authentication method. The
// (provider, providerUserID) unique index turns a concurrent first-time
// sign-in into a domain conflict error the caller resolves by re-fetching.
func (repo *authRepository) CreateAuthentication(ctx context.Context, auth *entity.Authentication) error {
	authM := fromAuthDomain(auth)

	if err := repo.db.WithContext(ctx).Create(authM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create authentication")
	}

	auth.ID = authM.ID
	auth.CreatedAt = authM.CreatedAt

	return nil
}

// FindAuthentication retrieves an authentication method by its provider and provider-specific ID.
func (repo *authRepository) FindAuthentication(ctx context.Context, provider entity.ProviderType, providerUserID string) (*entity.Authentication, error) {
	var authM model.AuthenticationModel
	err := repo.db.WithContext(ctx).
		First(&authM, "provider = ? AND provider_user_id = ?", string(provider), providerUserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAuthNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find authentication")
	}

	return toAuthDomain(&authM), nil
}

func toAuthDomain(authM *model.AuthenticationModel) *entity.Authentication {
	return &entity.Authentication{
		ID:             authM.ID,
		UserID:         authM.UserID,
		Provider:       entity.ProviderType(authM.Provider),
		ProviderUserID: authM.ProviderUserID,
		PasswordHash:   authM.PasswordHash,
		CreatedAt:      authM.CreatedAt,
	}
}

func fromAuthDomain(auth *entity.Authentication) *model.AuthenticationModel {
	return &model.AuthenticationModel{
		ID:             auth.ID,
		UserID:         auth.UserID,
		Provider:       string(auth.Provider),
		ProviderUserID: auth.ProviderUserID,
		PasswordHash:   auth.PasswordHash,
	}
}
