package timeclock

import (
	"time"

	"github.com/google/uuid"
)

// TimeEntry is one continuous work session owned by a single user.
type TimeEntry struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	ClockInTime      time.Time
	BreakStartTime   *time.Time
	BreakEndTime     *time.Time
	ClockOutTime     *time.Time
	Status           Status
	TotalHoursWorked *float64 // set once, at clock-out
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Owner is the minimal identity joined onto manager views.
type Owner struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
}

// EntryWithOwner includes joined owner data for manager views.
type EntryWithOwner struct {
	TimeEntry
	Owner Owner
}

// NewEntry starts a session for userID at now.
func NewEntry(userID uuid.UUID, now time.Time) TimeEntry {
	return TimeEntry{
		ID:          uuid.New(),
		UserID:      userID,
		ClockInTime: now,
		Status:      StatusClockedIn,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply returns a copy of e with ev applied at now. e itself is never
// modified, so a rejected event leaves the caller's entry untouched.
// EventClockIn is never applicable to an existing entry.
func (e TimeEntry) Apply(ev Event, now time.Time) (TimeEntry, error) {
	next, err := Next(e.Status, ev)
	if err != nil {
		return e, err
	}
	if ev == EventClockIn {
		return e, ErrAlreadyClockedIn
	}

	out := e
	switch ev {
	case EventStartBreak:
		if e.BreakStartTime != nil {
			return e, ErrBreakAlreadyTaken
		}
		if now.Before(e.ClockInTime) {
			return e, anomaly("break would start %s before clock-in", e.ClockInTime.Sub(now))
		}
		out.BreakStartTime = timePtr(now)
	case EventEndBreak:
		if e.BreakStartTime == nil {
			return e, anomaly("entry %s is on break without a break start", e.ID)
		}
		if now.Before(*e.BreakStartTime) {
			return e, anomaly("break would end %s before it started", e.BreakStartTime.Sub(now))
		}
		out.BreakEndTime = timePtr(now)
	case EventClockOut:
		hours, err := WorkedHours(e, now)
		if err != nil {
			return e, err
		}
		out.ClockOutTime = timePtr(now)
		out.TotalHoursWorked = &hours
	}
	out.Status = next
	out.UpdatedAt = now
	return out, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
