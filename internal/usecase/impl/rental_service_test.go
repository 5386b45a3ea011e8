package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentdesk/internal/domain/entity"
	domainerrors "rentdesk/internal/domain/errors"
	"rentdesk/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRentalService(env *testEnv) usecase.RentalUsecase {
	return &rentalService{
		txManager:  env.txManager,
		rentalRepo: env.rentalRepo,
		renterRepo: env.renterRepo,
		logger:     env.logger,
	}
}

func createTestRental(t *testing.T, svc usecase.RentalUsecase, renterName string, daysToPay int) *usecase.RentalRecordOutput {
	t.Helper()

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out, err := svc.CreateRental(context.Background(), &usecase.CreateRentalInput{
		RenterName:  renterName,
		ProductName: "excavator",
		Price:       30000,
		DailyRate:   1000,
		DaysToPay:   daysToPay,
		StartDate:   start,
		EndDate:     start.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	return out
}

func TestCreateRental_ProvisionsRenter(t *testing.T) {
	env := newTestEnv()
	svc := newRentalService(env)

	out := createTestRental(t, svc, "chen", 30)

	assert.Equal(t, "chen", out.RenterName)
	assert.Equal(t, "excavator", out.ProductName)
	assert.Equal(t, int64(0), out.AmountPaid)
	assert.Equal(t, 30, out.DaysToPay)
	assert.Equal(t, 30, out.RemainingDays)
	assert.False(t, out.Settled)
	assert.Nil(t, out.LastPaymentDate)

	renter, err := env.renterRepo.FindByName(context.Background(), "chen")
	require.NoError(t, err)
	assert.NotZero(t, renter.ID)
}

func TestCreateRental_ReusesExistingRenter(t *testing.T) {
	env := newTestEnv()
	svc := newRentalService(env)

	first := createTestRental(t, svc, "chen", 30)
	second := createTestRental(t, svc, "chen", 15)

	assert.NotEqual(t, first.ID, second.ID)

	renters, err := env.renterRepo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, renters, 1)
}

func TestAdvancePayment(t *testing.T) {
	env := newTestEnv()
	svc := newRentalService(env)

	created := createTestRental(t, svc, "chen", 2)

	first, err := svc.AdvancePayment(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), first.AmountPaid)
	assert.Equal(t, 1, first.RemainingDays)
	assert.False(t, first.Settled)
	require.NotNil(t, first.LastPaymentDate)

	second, err := svc.AdvancePayment(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), second.AmountPaid)
	assert.Equal(t, 0, second.RemainingDays)
	assert.True(t, second.Settled)
}

func TestAdvancePayment_Settled(t *testing.T) {
	env := newTestEnv()
	svc := newRentalService(env)

	created := createTestRental(t, svc, "chen", 1)

	_, err := svc.AdvancePayment(context.Background(), created.ID)
	require.NoError(t, err)

	// A settled record accepts no further advances; the amount is frozen.
	_, err = svc.AdvancePayment(context.Background(), created.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRentalSettled))

	record, findErr := env.rentalRepo.FindByID(context.Background(), created.ID)
	require.NoError(t, findErr)
	assert.Equal(t, int64(1000), record.AmountPaid)
	assert.Equal(t, 0, record.RemainingDays)
}

func TestAdvancePayment_NotFound(t *testing.T) {
	env := newTestEnv()
	svc := newRentalService(env)

	_, err := svc.AdvancePayment(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRentalNotFound))
}

func TestListRentals_NewestFirst(t *testing.T) {
	env := newTestEnv()
	svc := newRentalService(env)

	createTestRental(t, svc, "chen", 30)
	createTestRental(t, svc, "lin", 15)
	createTestRental(t, svc, "wang", 7)

	records, err := svc.ListRentals(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	// The most recently created record comes first.
	assert.Equal(t, "wang", records[0].RenterName)
	assert.Equal(t, "lin", records[1].RenterName)
	assert.Equal(t, "chen", records[2].RenterName)
}

func TestListRenters_NewestFirst(t *testing.T) {
	env := newTestEnv()
	svc := newRentalService(env)

	createTestRental(t, svc, "chen", 30)
	createTestRental(t, svc, "lin", 15)
	createTestRental(t, svc, "wang", 7)

	renters, err := svc.ListRenters(context.Background())
	require.NoError(t, err)
	require.Len(t, renters, 3)

	assert.Equal(t, "wang", renters[0].Name)
	assert.Equal(t, "lin", renters[1].Name)
	assert.Equal(t, "chen", renters[2].Name)
}

func TestCreateRental_ConcurrentRenterCreateResolved(t *testing.T) {
	env := newTestEnv()
	svc := newRentalService(env)

	// Pre-create the renter to simulate losing the create race; the service
	// must fall back to the existing row instead of failing.
	seeded := &entity.Renter{Name: "chen"}
	require.NoError(t, env.renterRepo.Create(context.Background(), seeded))

	out := createTestRental(t, svc, "chen", 30)

	record, err := env.rentalRepo.FindByID(context.Background(), out.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, record.RenterID)
}
