package timeclock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/schooner-time/timeclock/internal/auth"
	"github.com/schooner-time/timeclock/internal/shared"
)

// Transition outcomes reported to an Observer.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultAnomaly  = "anomaly"
	ResultError    = "error"
)

// Observer records transition outcomes.
type Observer interface {
	ObserveTransition(event Event, result string)
}

// Service provides the clock lifecycle and its queries.
type Service struct {
	repo     Repository
	locker   shared.Locker
	logger   *slog.Logger
	observer Observer
	clock    func() time.Time
}

// NewService creates a new service. A nil locker falls back to an in-process keyed mutex.
func NewService(repo Repository, locker shared.Locker, logger *slog.Logger) *Service {
	if locker == nil {
		locker = shared.NewKeyedMutex()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, locker: locker, logger: logger, clock: time.Now}
}

// SetObserver sets the transition observer.
func (s *Service) SetObserver(o Observer) {
	s.observer = o
}

// ClockIn opens a new session for the caller.
func (s *Service) ClockIn(ctx context.Context, caller shared.Principal) (TimeEntry, error) {
	return s.transition(ctx, caller, EventClockIn)
}

// StartBreak starts the caller's single break.
func (s *Service) StartBreak(ctx context.Context, caller shared.Principal) (TimeEntry, error) {
	return s.transition(ctx, caller, EventStartBreak)
}

// EndBreak ends the caller's break in progress.
func (s *Service) EndBreak(ctx context.Context, caller shared.Principal) (TimeEntry, error) {
	return s.transition(ctx, caller, EventEndBreak)
}

// ClockOut closes the caller's session and records worked hours.
func (s *Service) ClockOut(ctx context.Context, caller shared.Principal) (TimeEntry, error) {
	return s.transition(ctx, caller, EventClockOut)
}

// transition runs find-active-then-mutate for one user under the user's lock
// and inside one unit of work, so no write can slip in between the two.
func (s *Service) transition(ctx context.Context, caller shared.Principal, ev Event) (TimeEntry, error) {
	if caller.UserID == uuid.Nil {
		return TimeEntry{}, fmt.Errorf("%w: no caller identity", shared.ErrUnauthorized)
	}

	unlock, err := s.locker.Lock(ctx, shared.UserLockKey(caller.UserID))
	if err != nil {
		err = fmt.Errorf("timeclock: lock user: %w", err)
		s.record(caller, ev, err)
		return TimeEntry{}, err
	}
	defer unlock()

	var result TimeEntry
	err = s.repo.WithUserTx(ctx, caller.UserID, func(ctx context.Context, tx TxRepository) error {
		now := s.clock().UTC()
		current := StatusNone
		active, err := tx.FindActive(ctx, caller.UserID)
		switch {
		case err == nil:
			current = active.Status
		case !errors.Is(err, shared.ErrNotFound):
			return fmt.Errorf("timeclock: find active entry: %w", err)
		}

		if current == StatusNone {
			if _, err := Next(current, ev); err != nil {
				return err
			}
			result = NewEntry(caller.UserID, now)
			return tx.Insert(ctx, result)
		}

		next, err := active.Apply(ev, now)
		if err != nil {
			return err
		}
		result = next
		return tx.Update(ctx, result)
	})
	s.record(caller, ev, err)
	if err != nil {
		return TimeEntry{}, err
	}
	return result, nil
}

func (s *Service) record(caller shared.Principal, ev Event, err error) {
	result := outcome(err)
	if s.observer != nil {
		s.observer.ObserveTransition(ev, result)
	}
	attrs := []any{
		slog.String("user_id", caller.UserID.String()),
		slog.String("event", string(ev)),
	}
	switch result {
	case ResultOK:
		s.logger.Info("time entry transition", attrs...)
	case ResultRejected:
		s.logger.Info("time entry transition rejected", append(attrs, slog.String("reason", err.Error()))...)
	default:
		s.logger.Error("time entry transition failed", append(attrs, slog.Any("error", err))...)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, shared.ErrInvalidTransition):
		return ResultRejected
	case errors.Is(err, shared.ErrComputationAnomaly):
		return ResultAnomaly
	default:
		return ResultError
	}
}

// EntriesForUser returns the caller's own entries, newest first.
func (s *Service) EntriesForUser(ctx context.Context, caller shared.Principal) ([]TimeEntry, error) {
	if caller.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: no caller identity", shared.ErrUnauthorized)
	}
	return s.repo.ListByUser(ctx, caller.UserID)
}

// AllEntries returns every user's entries matching filter, newest first. Manager only.
func (s *Service) AllEntries(ctx context.Context, caller shared.Principal, filter ListFilter) ([]EntryWithOwner, error) {
	if err := auth.Authorize(caller.Role, shared.RoleManager); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx, filter)
}

// ActiveRoster returns the entries currently clocked_in or on_break. Manager only.
// Every call reads the store so a committed transition is always visible.
func (s *Service) ActiveRoster(ctx context.Context, caller shared.Principal) ([]EntryWithOwner, error) {
	if err := auth.Authorize(caller.Role, shared.RoleManager); err != nil {
		return nil, err
	}
	return s.repo.ListActive(ctx)
}
