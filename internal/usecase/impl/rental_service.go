package impl

import (
	"context"
	"log/slog"

	deliverycontext "rentdesk/internal/delivery/context"
	"rentdesk/internal/domain/entity"
	domainerrors "rentdesk/internal/domain/errors"
	"rentdesk/internal/domain/repository"
	"rentdesk/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// rentalService implements the RentalUsecase interface.
type rentalService struct {
	txManager  repository.TransactionManager
	rentalRepo repository.RentalRecordRepository
	renterRepo repository.RenterRepository
	logger     *slog.Logger
}

// RentalServiceParams holds dependencies for rentalService, injected by Fx.
type RentalServiceParams struct {
	fx.In

	TxManager  repository.TransactionManager
	RentalRepo repository.RentalRecordRepository
	RenterRepo repository.RenterRepository
	Logger     *slog.Logger
}

// NewRentalService is the constructor for rentalService.
func NewRentalService(params RentalServiceParams) usecase.RentalUsecase {
	return &rentalService{
		txManager:  params.TxManager,
		rentalRepo: params.RentalRepo,
		renterRepo: params.RenterRepo,
		logger:     params.Logger,
	}
}

func (srv *rentalService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateRental creates a rental record, provisioning the renter by name when
// needed. The renter lookup and record insert share one transaction so a
// renter row is never left behind without its record.
func (srv *rentalService) CreateRental(ctx context.Context, input *usecase.CreateRentalInput) (*usecase.RentalRecordOutput, error) {
	srv.log(ctx).Info("Creating rental record", slog.String("renter", input.RenterName), slog.String("product", input.ProductName))

	var created *entity.RentalRecord
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		renterRepo := repoFactory.RenterRepo()
		rentalRepo := repoFactory.RentalRepo()

		renter, err := srv.resolveRenter(ctx, renterRepo, input.RenterName)
		if err != nil {
			return err
		}

		record := &entity.RentalRecord{
			RenterID:    renter.ID,
			Renter:      renter,
			ProductName: input.ProductName,
			Price:       input.Price,
			DailyRate:   input.DailyRate,
			DaysToPay:   input.DaysToPay,
			// A new record starts with the full payment schedule ahead of it.
			RemainingDays: input.DaysToPay,
			AmountPaid:    0,
			StartDate:     input.StartDate,
			EndDate:       input.EndDate,
		}

		if err := rentalRepo.Create(ctx, record); err != nil {
			return errors.Wrap(err, "failed to create rental record")
		}

		created = record

		return nil
	})

	if err != nil {
		srv.log(ctx).Error("Failed to execute rental creation transaction", slog.String("renter", input.RenterName), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute rental creation transaction")
	}

	srv.log(ctx).Debug("Rental record created", slog.Any("rentalID", created.ID))

	return usecase.NewRentalRecordOutput(created), nil
}

// resolveRenter finds the renter by name or creates one. A concurrent create
// of the same name loses on the unique constraint and resolves by re-fetching.
func (srv *rentalService) resolveRenter(ctx context.Context, renterRepo repository.RenterRepository, name string) (*entity.Renter, error) {
	renter, err := renterRepo.FindByName(ctx, name)
	if err == nil {
		return renter, nil
	}
	if !errors.Is(err, repository.ErrRenterNotFound) {
		return nil, errors.Wrap(err, "failed to find renter by name")
	}

	newRenter := &entity.Renter{Name: name}
	if err := renterRepo.Create(ctx, newRenter); err != nil {
		if errors.Is(err, domainerrors.ErrRenterAlreadyExists) {
			existing, findErr := renterRepo.FindByName(ctx, name)
			if findErr != nil {
				return nil, errors.Wrap(findErr, "failed to refetch renter after conflict")
			}

			return existing, nil
		}

		return nil, errors.Wrap(err, "failed to create renter")
	}

	return newRenter, nil
}

// ListRentals returns all rental records, newest first.
func (srv *rentalService) ListRentals(ctx context.Context) ([]*usecase.RentalRecordOutput, error) {
	records, err := srv.rentalRepo.ListAll(ctx)
	if err != nil {
		srv.log(ctx).Error("Failed to list rental records", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list rental records")
	}

	outputs := make([]*usecase.RentalRecordOutput, 0, len(records))
	for _, record := range records {
		outputs = append(outputs, usecase.NewRentalRecordOutput(record))
	}

	return outputs, nil
}

// AdvancePayment registers one day's payment on the record. The decrement is
// a single conditional update in the store, so concurrent advances serialize
// there and a settled record can never go negative.
func (srv *rentalService) AdvancePayment(ctx context.Context, rentalID uuid.UUID) (*usecase.RentalRecordOutput, error) {
	srv.log(ctx).Info("Advancing rental payment", slog.Any("rentalID", rentalID))

	record, err := srv.rentalRepo.AdvancePayment(ctx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrRentalNotFound) {
			srv.log(ctx).Warn("Rental record not found", slog.Any("rentalID", rentalID))

			return nil, errors.Wrap(domainerrors.ErrRentalNotFound, "advance payment failed")
		}
		if errors.Is(err, repository.ErrRentalSettled) {
			srv.log(ctx).Warn("Rental record already settled", slog.Any("rentalID", rentalID))

			return nil, errors.Wrap(domainerrors.ErrRentalSettled, "advance payment failed")
		}
		srv.log(ctx).Error("Failed to advance rental payment", slog.Any("rentalID", rentalID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to advance rental payment")
	}

	srv.log(ctx).Debug("Rental payment advanced",
		slog.Any("rentalID", rentalID),
		slog.Int("remainingDays", record.RemainingDays),
		slog.Int64("amountPaid", record.AmountPaid))

	return usecase.NewRentalRecordOutput(record), nil
}

// ListRenters returns all renters, newest first.
func (srv *rentalService) ListRenters(ctx context.Context) ([]*usecase.RenterOutput, error) {
	renters, err := srv.renterRepo.ListAll(ctx)
	if err != nil {
		srv.log(ctx).Error("Failed to list renters", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list renters")
	}

	outputs := make([]*usecase.RenterOutput, 0, len(renters))
	for _, renter := range renters {
		outputs = append(outputs, &usecase.RenterOutput{
			ID:        renter.ID,
			Name:      renter.Name,
			CreatedAt: renter.CreatedAt,
		})
	}

	return outputs, nil
}
