package timeclock

import (
	"fmt"

	"github.com/schooner-time/timeclock/internal/shared"
)

// transitionError carries the client-facing rejection message and
// classifies as shared.ErrInvalidTransition.
type transitionError struct {
	msg string
}

func (e *transitionError) Error() string { return e.msg }

func (e *transitionError) Unwrap() error { return shared.ErrInvalidTransition }

// Transition rejections.
var (
	ErrAlreadyClockedIn  error = &transitionError{msg: "You are already clocked in"}
	ErrNoActiveEntry     error = &transitionError{msg: "No active time entry found"}
	ErrNoActiveBreak     error = &transitionError{msg: "No active break found"}
	ErrAlreadyOnBreak    error = &transitionError{msg: "You are already on break"}
	ErrBreakAlreadyTaken error = &transitionError{msg: "A break has already been taken during this shift"}
	ErrEntryClosed       error = &transitionError{msg: "Time entry is already clocked out"}
)

func anomaly(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{shared.ErrComputationAnomaly}, args...)...)
}
