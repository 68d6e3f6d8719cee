package httpx

import (
	"errors"
	"net/http"

	"github.com/schooner-time/timeclock/internal/shared"
)

// StatusFor classifies a domain error into an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidTransition),
		errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807.
// Server faults, including computation anomalies, never leak their detail.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	switch status {
	case http.StatusUnauthorized:
		Problem(w, status, "Unauthorized", shared.ErrUnauthorized.Error())
	case http.StatusForbidden:
		Problem(w, status, "Forbidden", err.Error())
	case http.StatusNotFound:
		Problem(w, status, "Not Found", err.Error())
	case http.StatusBadRequest:
		Problem(w, status, titleFor(err), err.Error())
	default:
		if errors.Is(err, shared.ErrComputationAnomaly) {
			Problem(w, status, "Computation Anomaly", "worked hours could not be computed; the entry was left unchanged")
			return
		}
		Problem(w, status, "Internal Error", "")
	}
}

func titleFor(err error) string {
	switch {
	case errors.Is(err, shared.ErrInvalidTransition):
		return "Invalid Transition"
	case errors.Is(err, shared.ErrInvalidCredentials):
		return "Invalid Credentials"
	default:
		return "Validation Failed"
	}
}
