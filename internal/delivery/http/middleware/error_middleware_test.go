package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	domainerrors "rentdesk/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newErrorTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func TestHandleHTTPError_AppErrorWithDetails(t *testing.T) {
	m := NewErrorMiddleware(slog.Default())
	c, rec := newErrorTestContext()

	m.HandleHTTPError(domainerrors.ErrValidationFailed.WithDetails("endDate must be after startDate"), c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
	assert.Contains(t, rec.Body.String(), "endDate must be after startDate")
}

func TestHandleHTTPError_WrappedSentinel(t *testing.T) {
	m := NewErrorMiddleware(slog.Default())
	c, rec := newErrorTestContext()

	m.HandleHTTPError(errors.Wrap(domainerrors.ErrRentalSettled, "advance payment failed"), c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "RENTAL_SETTLED")
}

func TestHandleHTTPError_DatabaseErrorHidesDetails(t *testing.T) {
	m := NewErrorMiddleware(slog.Default())
	c, rec := newErrorTestContext()

	dbErr := domainerrors.NewDatabaseExecuteError(
		errors.New("pq: connection to host db-primary failed"),
		"failed to advance rental payment",
	)
	m.HandleHTTPError(dbErr, c)

	// The client sees the generic envelope; the underlying error and the
	// internal detail string stay server-side.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "DATABASE_EXECUTE_FAILED")
	assert.NotContains(t, rec.Body.String(), "db-primary")
	assert.NotContains(t, rec.Body.String(), "failed to advance rental payment")
}

func TestHandleHTTPError_UnknownErrorHidesDetails(t *testing.T) {
	m := NewErrorMiddleware(slog.Default())
	c, rec := newErrorTestContext()

	m.HandleHTTPError(errors.New("dial tcp 10.0.0.7:5432: connection refused"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, rec.Body.String(), "10.0.0.7")
}

func TestHandleHTTPError_EchoHTTPError(t *testing.T) {
	m := NewErrorMiddleware(slog.Default())
	c, rec := newErrorTestContext()

	m.HandleHTTPError(echo.NewHTTPError(http.StatusNotFound, "Not Found"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "HTTP_ERROR")
}
