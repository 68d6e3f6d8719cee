package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrValidation indicates malformed caller input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when a credential is missing, malformed,
	// carries a bad signature, is bound to another issuer/audience or has expired.
	ErrUnauthorized = errors.New("invalid or expired token")
	// ErrForbidden is returned when an authenticated caller lacks the required role.
	ErrForbidden = errors.New("access denied: not authorized")
	// ErrInvalidTransition is returned when an event has no legal edge from the
	// caller's current clock state. State is left untouched.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrComputationAnomaly reports a duration that would be negative or come
	// from a malformed break window. It is never persisted.
	ErrComputationAnomaly = errors.New("computation anomaly")
)
