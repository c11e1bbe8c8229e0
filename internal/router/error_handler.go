package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	apperrors "authgate/internal/errors"
)

// NewHTTPErrorHandler returns the single error boundary for the service.
// Every non-2xx response is rendered as the {"errors":[...]} envelope:
//   - validation failures carry their ordered field errors
//   - known domain errors map to deterministic status codes
//   - anything else is logged with detail and returned as an opaque 500
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, apperrors.Envelope) {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Envelope()
	}

	switch {
	case errors.Is(err, apperrors.ErrEmailTaken):
		// Duplicate email is a client error on this API, reported as 400.
		return http.StatusBadRequest, apperrors.NewEnvelope(apperrors.TypeConflict, err.Error(), "email")
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, apperrors.NewEnvelope(apperrors.TypeUnauthorized, err.Error(), "")
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, apperrors.NewEnvelope(apperrors.TypeForbidden, err.Error(), "")
	case errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, apperrors.NewEnvelope(apperrors.TypeNotFound, err.Error(), "")
	}

	// Echo's own errors: bind failures, router 404s, echo-jwt rejections.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, apperrors.NewEnvelope(typeForStatus(he.Code), fmt.Sprintf("%v", he.Message), "")
	}

	// Unexpected error: log the cause, keep the response opaque.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError,
		apperrors.NewEnvelope(apperrors.TypeInternal, "internal server error", "")
}

func typeForStatus(code int) string {
	switch code {
	case http.StatusBadRequest:
		return apperrors.TypeField
	case http.StatusUnauthorized:
		return apperrors.TypeUnauthorized
	case http.StatusForbidden:
		return apperrors.TypeForbidden
	case http.StatusNotFound:
		return apperrors.TypeNotFound
	default:
		return apperrors.TypeInternal
	}
}
