package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rentdesk/internal/delivery/http/validator"
	"rentdesk/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRentalUsecase returns canned values so the handler's binding and
// response shaping can be tested without the persistence stack.
type stubRentalUsecase struct {
	created    *usecase.RentalRecordOutput
	createErr  error
	advanced   *usecase.RentalRecordOutput
	advanceErr error
	rentals    []*usecase.RentalRecordOutput
	renters    []*usecase.RenterOutput

	lastCreateInput *usecase.CreateRentalInput
	lastAdvanceID   uuid.UUID
}

func (s *stubRentalUsecase) CreateRental(_ context.Context, input *usecase.CreateRentalInput) (*usecase.RentalRecordOutput, error) {
	s.lastCreateInput = input

	return s.created, s.createErr
}

func (s *stubRentalUsecase) ListRentals(_ context.Context) ([]*usecase.RentalRecordOutput, error) {
	return s.rentals, nil
}

func (s *stubRentalUsecase) AdvancePayment(_ context.Context, rentalID uuid.UUID) (*usecase.RentalRecordOutput, error) {
	s.lastAdvanceID = rentalID

	return s.advanced, s.advanceErr
}

func (s *stubRentalUsecase) ListRenters(_ context.Context) ([]*usecase.RenterOutput, error) {
	return s.renters, nil
}

func newRentalTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validator.New()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func sampleRecordOutput() *usecase.RentalRecordOutput {
	return &usecase.RentalRecordOutput{
		ID:            uuid.New(),
		RenterID:      uuid.New(),
		RenterName:    "chen",
		ProductName:   "excavator",
		Price:         30000,
		DailyRate:     1000,
		DaysToPay:     30,
		RemainingDays: 30,
		StartDate:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRentalHandler_CreateRental(t *testing.T) {
	stub := &stubRentalUsecase{created: sampleRecordOutput()}
	h := NewRentalHandler(stub)

	body := `{
		"renterName": "chen",
		"productName": "excavator",
		"price": 30000,
		"dailyRate": 1000,
		"daysToPay": 30,
		"startDate": "2026-08-01T00:00:00Z",
		"endDate": "2026-09-01T00:00:00Z"
	}`
	c, rec := newRentalTestContext(t, http.MethodPost, "/products", body)

	require.NoError(t, h.CreateRental(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), `"renterName":"chen"`)

	require.NotNil(t, stub.lastCreateInput)
	assert.Equal(t, "chen", stub.lastCreateInput.RenterName)
	assert.Equal(t, 30, stub.lastCreateInput.DaysToPay)
}

func TestRentalHandler_CreateRental_ValidationFails(t *testing.T) {
	stub := &stubRentalUsecase{}
	h := NewRentalHandler(stub)

	// End date before start date must be rejected before the use case runs.
	body := `{
		"renterName": "chen",
		"productName": "excavator",
		"price": 30000,
		"dailyRate": 1000,
		"daysToPay": 30,
		"startDate": "2026-09-01T00:00:00Z",
		"endDate": "2026-08-01T00:00:00Z"
	}`
	c, _ := newRentalTestContext(t, http.MethodPost, "/products", body)

	err := h.CreateRental(c)
	require.Error(t, err)
	assert.Nil(t, stub.lastCreateInput)
}

func TestRentalHandler_AdvancePayment(t *testing.T) {
	advanced := sampleRecordOutput()
	advanced.AmountPaid = 1000
	advanced.RemainingDays = 29
	stub := &stubRentalUsecase{advanced: advanced}
	h := NewRentalHandler(stub)

	c, rec := newRentalTestContext(t, http.MethodPost, "/products/"+advanced.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(advanced.ID.String())

	require.NoError(t, h.AdvancePayment(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"remainingDays":29`)
	assert.Equal(t, advanced.ID, stub.lastAdvanceID)
}

func TestRentalHandler_AdvancePayment_InvalidID(t *testing.T) {
	stub := &stubRentalUsecase{}
	h := NewRentalHandler(stub)

	c, rec := newRentalTestContext(t, http.MethodPost, "/products/not-a-uuid", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	require.NoError(t, h.AdvancePayment(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
	assert.Equal(t, uuid.Nil, stub.lastAdvanceID)
}

func TestRentalHandler_ListRentals(t *testing.T) {
	stub := &stubRentalUsecase{rentals: []*usecase.RentalRecordOutput{sampleRecordOutput()}}
	h := NewRentalHandler(stub)

	c, rec := newRentalTestContext(t, http.MethodGet, "/products", "")

	require.NoError(t, h.ListRentals(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"productName":"excavator"`)
}

func TestRentalHandler_ListRenters(t *testing.T) {
	stub := &stubRentalUsecase{renters: []*usecase.RenterOutput{{
		ID:   uuid.New(),
		Name: "chen",
	}}}
	h := NewRentalHandler(stub)

	c, rec := newRentalTestContext(t, http.MethodGet, "/renters", "")

	require.NoError(t, h.ListRenters(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"chen"`)
}
