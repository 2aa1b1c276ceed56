package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"coldchain/internal/pkg/errs"
)

// Problem is the error body returned for every failed request.
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SedeMismatchProblem is the 409 body for a blocked cross-warehouse movement.
// It names the origins, the destination and the affected codes so the client
// can re-issue the request with the transfer flag set.
type SedeMismatchProblem struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	SedesOrigen []string `json:"sedes_origen"`
	SedeDestino string   `json:"sede_destino"`
	Rfids       []string `json:"rfids"`
}

// respondError translates domain errors into HTTP responses. Validation
// failures map to 400, missing objects to 404, lifecycle and storage
// conflicts to 409; anything unexpected becomes an opaque 500 so internals
// never leak to the client.
func respondError(c echo.Context, err error) error {
	var sedeErr *errs.SedeMismatchError
	if errors.As(err, &sedeErr) {
		return c.JSON(http.StatusConflict, SedeMismatchProblem{
			Code:        "SEDE_MISMATCH",
			Message:     sedeErr.Error(),
			SedesOrigen: sedeErr.SedesOrigen,
			SedeDestino: sedeErr.SedeDestino,
			Rfids:       sedeErr.Rfids,
		})
	}

	var stateErr *errs.StateConflictError
	if errors.As(err, &stateErr) {
		return c.JSON(http.StatusConflict, Problem{
			Code:    stateErr.Code,
			Message: stateErr.Error(),
		})
	}

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return c.JSON(http.StatusNotFound, Problem{
			Code:    "NOT_FOUND",
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrIntegrityConflict):
		return c.JSON(http.StatusConflict, Problem{
			Code:    "INTEGRITY_CONFLICT",
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return c.JSON(http.StatusBadRequest, Problem{
			Code:    "VALIDATION_ERROR",
			Message: err.Error(),
		})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, Problem{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		})
	}
}
