package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/retailpos/pos-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error classes and sentinels to HTTP status codes.
//   - Logs unexpected and persistence errors without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrTxConflict):
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("transaction conflict")
		return http.StatusConflict, domain.ErrTxConflict.Error()
	case errors.Is(err, domain.ErrPersistence):
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("persistence failure")
		return http.StatusInternalServerError, "internal server error"

	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrProductInactive),
		errors.Is(err, domain.ErrSaleNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrSupplierNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrLastAdmin),
		errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrBarcodeExists),
		errors.Is(err, domain.ErrCategoryExists),
		errors.Is(err, domain.ErrDuplicateSaleNumber):
		return http.StatusConflict, err.Error()

	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrAccountDisabled):
		return http.StatusUnauthorized, "account is deactivated"

	case errors.Is(err, domain.ErrSelfModification),
		errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
