// Package timeclock implements the time entry lifecycle: clock-in, one break,
// clock-out, and the worked-hours computation performed at clock-out.
package timeclock

import (
	"fmt"

	"github.com/schooner-time/timeclock/internal/shared"
)

// Status is the lifecycle state of a time entry.
type Status string

const (
	// StatusNone is the user's state when no entry is active. It is never stored.
	StatusNone       Status = ""
	StatusClockedIn  Status = "clocked_in"
	StatusOnBreak    Status = "on_break"
	StatusClockedOut Status = "clocked_out"
)

// IsValid checks if the status is a storable value.
func (s Status) IsValid() bool {
	switch s {
	case StatusClockedIn, StatusOnBreak, StatusClockedOut:
		return true
	default:
		return false
	}
}

// IsActive reports whether an entry in this status counts as an open session.
func (s Status) IsActive() bool {
	return s == StatusClockedIn || s == StatusOnBreak
}

// ParseStatus converts a stored or query value into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: unknown status %q", shared.ErrValidation, raw)
	}
	return s, nil
}

// Event is a request to move a user's clock state.
type Event string

const (
	EventClockIn    Event = "clock_in"
	EventStartBreak Event = "start_break"
	EventEndBreak   Event = "end_break"
	EventClockOut   Event = "clock_out"
)

// Events lists every event in lifecycle order.
func Events() []Event {
	return []Event{EventClockIn, EventStartBreak, EventEndBreak, EventClockOut}
}

var transitions = map[Status]map[Event]Status{
	StatusNone:      {EventClockIn: StatusClockedIn},
	StatusClockedIn: {EventStartBreak: StatusOnBreak, EventClockOut: StatusClockedOut},
	StatusOnBreak:   {EventEndBreak: StatusClockedIn, EventClockOut: StatusClockedOut},
}

// Next returns the state reached by applying ev in from. Events with no edge
// are rejected with an error wrapping shared.ErrInvalidTransition.
func Next(from Status, ev Event) (Status, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, rejection(from, ev)
}

func rejection(from Status, ev Event) error {
	if from == StatusClockedOut {
		return ErrEntryClosed
	}
	switch ev {
	case EventClockIn:
		return ErrAlreadyClockedIn
	case EventStartBreak:
		if from == StatusOnBreak {
			return ErrAlreadyOnBreak
		}
		return ErrNoActiveEntry
	case EventEndBreak:
		return ErrNoActiveBreak
	case EventClockOut:
		return ErrNoActiveEntry
	default:
		return &transitionError{msg: fmt.Sprintf("unknown event %q", ev)}
	}
}
