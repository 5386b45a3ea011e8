package handler

import (
	"net/http"

	"rentdesk/internal/delivery/http/response"
	"rentdesk/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// RentalHandler holds dependencies for rental record handlers.
type RentalHandler struct {
	uc usecase.RentalUsecase
}

// NewRentalHandler is the constructor for RentalHandler, injected by Fx.
func NewRentalHandler(uc usecase.RentalUsecase) *RentalHandler {
	return &RentalHandler{
		uc: uc,
	}
}

// CreateRental handles the new rental record request.
func (h *RentalHandler) CreateRental(c echo.Context) error {
	input := new(usecase.CreateRentalInput)
	if err := c.Bind(input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid rental record input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.CreateRental(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "Rental record created successfully")
}

// ListRentals returns every rental record, newest first.
func (h *RentalHandler) ListRentals(c echo.Context) error {
	outputs, err := h.uc.ListRentals(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, outputs, "Rental records retrieved")
}

// AdvancePayment registers one day's payment on a rental record.
func (h *RentalHandler) AdvancePayment(c echo.Context) error {
	rentalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid rental record ID")
	}

	output, err := h.uc.AdvancePayment(c.Request().Context(), rentalID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Payment advanced successfully")
}

// ListRenters returns every renter, newest first.
func (h *RentalHandler) ListRenters(c echo.Context) error {
	outputs, err := h.uc.ListRenters(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, outputs, "Renters retrieved")
}
