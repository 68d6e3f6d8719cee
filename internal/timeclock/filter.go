package timeclock

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/schooner-time/timeclock/internal/shared"
)

// DateLayout is the calendar-day format accepted by list filters.
const DateLayout = "2006-01-02"

// ListFilter narrows the manager's all-entries view. Zero fields match everything.
// From and To are calendar days in UTC; both bounds are inclusive.
type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Status Status
	UserID uuid.UUID
}

// Validate checks the filter is coherent.
func (f ListFilter) Validate() error {
	if f.Status != StatusNone && !f.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrValidation, f.Status)
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return fmt.Errorf("%w: to must not be before from", shared.ErrValidation)
	}
	return nil
}

// lowerBound is the first instant included by From.
func (f ListFilter) lowerBound() (time.Time, bool) {
	if f.From == nil {
		return time.Time{}, false
	}
	return startOfDay(*f.From), true
}

// upperBound is the first instant excluded by To.
func (f ListFilter) upperBound() (time.Time, bool) {
	if f.To == nil {
		return time.Time{}, false
	}
	return startOfDay(*f.To).AddDate(0, 0, 1), true
}

// Matches reports whether e passes the filter.
func (f ListFilter) Matches(e TimeEntry) bool {
	if lo, ok := f.lowerBound(); ok && e.ClockInTime.Before(lo) {
		return false
	}
	if hi, ok := f.upperBound(); ok && !e.ClockInTime.Before(hi) {
		return false
	}
	if f.Status != StatusNone && e.Status != f.Status {
		return false
	}
	if f.UserID != uuid.Nil && e.UserID != f.UserID {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
