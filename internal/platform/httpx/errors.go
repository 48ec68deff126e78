package httpx

import (
	"errors"
	"log/slog"
	"net/http"
)

// Sentinel errors for the domain layer. Handlers hand any service error to
// RespondError, which maps these to statuses; anything unrecognized becomes a
// generic 500 without leaking internal detail.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDeactivated        = errors.New("account is deactivated")
	ErrMissingToken       = errors.New("missing authentication token")
	ErrInvalidToken       = errors.New("invalid authentication token")
	ErrExpiredToken       = errors.New("authentication token expired")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrSelfDelete         = errors.New("cannot delete your own account")
)

// RespondError maps a domain error to a JSON error response.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		Fail(w, http.StatusBadRequest, "Email already in use")
	case errors.Is(err, ErrSelfDelete):
		Fail(w, http.StatusBadRequest, "Cannot delete your own account")
	case errors.Is(err, ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, ErrDeactivated):
		Fail(w, http.StatusUnauthorized, "Account is deactivated")
	case errors.Is(err, ErrMissingToken):
		Fail(w, http.StatusUnauthorized, "Authentication token required")
	case errors.Is(err, ErrExpiredToken):
		Fail(w, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, ErrInvalidToken):
		Fail(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, ErrForbidden):
		Fail(w, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, ErrNotFound):
		Fail(w, http.StatusNotFound, "User not found")
	default:
		if logger != nil {
			logger.Error("unhandled request error", slog.Any("error", err))
		}
		Fail(w, http.StatusInternalServerError, "Internal server error")
	}
}
