package timeclock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/schooner-time/timeclock/internal/shared"
	"github.com/schooner-time/timeclock/internal/users"
)

// MemoryRepository keeps entries in process. Units of work for one user are
// serialized by a keyed mutex and their writes are staged until fn succeeds.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]TimeEntry
	active  map[uuid.UUID]uuid.UUID // user id -> active entry id
	users   users.Repository
	units   *shared.KeyedMutex
}

// NewMemoryRepository constructs an empty repository that joins owners from owners.
func NewMemoryRepository(owners users.Repository) *MemoryRepository {
	return &MemoryRepository{
		entries: make(map[uuid.UUID]TimeEntry),
		active:  make(map[uuid.UUID]uuid.UUID),
		users:   owners,
		units:   shared.NewKeyedMutex(),
	}
}

type memTx struct {
	repo   *MemoryRepository
	userID uuid.UUID
	staged map[uuid.UUID]TimeEntry
	order  []uuid.UUID
}

// WithUserTx implements Repository.
func (m *MemoryRepository) WithUserTx(ctx context.Context, userID uuid.UUID, fn func(context.Context, TxRepository) error) error {
	unlock, err := m.units.Lock(ctx, shared.UserLockKey(userID))
	if err != nil {
		return err
	}
	defer unlock()

	tx := &memTx{repo: m, userID: userID, staged: make(map[uuid.UUID]TimeEntry)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return m.commit(tx)
}

func (m *MemoryRepository) commit(tx *memTx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	active, hasActive := m.active[tx.userID]
	for _, id := range tx.order {
		e := tx.staged[id]
		if e.Status.IsActive() && hasActive && active != e.ID {
			return ErrAlreadyClockedIn
		}
		if e.Status.IsActive() {
			active, hasActive = e.ID, true
		} else if hasActive && active == e.ID {
			hasActive = false
		}
	}

	for _, id := range tx.order {
		m.entries[id] = tx.staged[id]
	}
	if hasActive {
		m.active[tx.userID] = active
	} else {
		delete(m.active, tx.userID)
	}
	return nil
}

func (t *memTx) stage(e TimeEntry) {
	if _, ok := t.staged[e.ID]; !ok {
		t.order = append(t.order, e.ID)
	}
	t.staged[e.ID] = e
}

func (t *memTx) lookup(id uuid.UUID) (TimeEntry, bool) {
	if e, ok := t.staged[id]; ok {
		return e, true
	}
	t.repo.mu.RLock()
	defer t.repo.mu.RUnlock()
	e, ok := t.repo.entries[id]
	return e, ok
}

// FindActive implements TxRepository, seeing this unit's own staged writes.
func (t *memTx) FindActive(_ context.Context, userID uuid.UUID) (TimeEntry, error) {
	if userID != t.userID {
		return TimeEntry{}, fmt.Errorf("timeclock: read for user %s inside unit of work for %s", userID, t.userID)
	}
	for _, id := range t.order {
		if e := t.staged[id]; e.Status.IsActive() {
			return e, nil
		}
	}
	t.repo.mu.RLock()
	id, ok := t.repo.active[userID]
	t.repo.mu.RUnlock()
	if !ok {
		return TimeEntry{}, shared.ErrNotFound
	}
	if e, ok := t.lookup(id); ok && e.Status.IsActive() {
		return e, nil
	}
	return TimeEntry{}, shared.ErrNotFound
}

// Insert implements TxRepository.
func (t *memTx) Insert(_ context.Context, e TimeEntry) error {
	if e.UserID != t.userID {
		return fmt.Errorf("timeclock: insert for user %s inside unit of work for %s", e.UserID, t.userID)
	}
	if _, exists := t.lookup(e.ID); exists {
		return fmt.Errorf("timeclock: entry %s already exists", e.ID)
	}
	t.stage(e)
	return nil
}

// Update implements TxRepository.
func (t *memTx) Update(_ context.Context, e TimeEntry) error {
	if e.UserID != t.userID {
		return fmt.Errorf("timeclock: update for user %s inside unit of work for %s", e.UserID, t.userID)
	}
	current, ok := t.lookup(e.ID)
	if !ok || current.UserID != e.UserID {
		return shared.ErrNotFound
	}
	t.stage(e)
	return nil
}

// ListByUser implements Repository.
func (m *MemoryRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]TimeEntry, error) {
	m.mu.RLock()
	var out []TimeEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	m.mu.RUnlock()
	sortNewestFirst(out, func(e TimeEntry) TimeEntry { return e })
	return out, nil
}

// ListAll implements Repository.
func (m *MemoryRepository) ListAll(ctx context.Context, filter ListFilter) ([]EntryWithOwner, error) {
	return m.withOwners(ctx, filter.Matches)
}

// ListActive implements Repository.
func (m *MemoryRepository) ListActive(ctx context.Context) ([]EntryWithOwner, error) {
	return m.withOwners(ctx, func(e TimeEntry) bool { return e.Status.IsActive() })
}

func (m *MemoryRepository) withOwners(ctx context.Context, keep func(TimeEntry) bool) ([]EntryWithOwner, error) {
	m.mu.RLock()
	var picked []TimeEntry
	for _, e := range m.entries {
		if keep(e) {
			picked = append(picked, e)
		}
	}
	m.mu.RUnlock()

	owners := make(map[uuid.UUID]Owner)
	out := make([]EntryWithOwner, 0, len(picked))
	for _, e := range picked {
		owner, ok := owners[e.UserID]
		if !ok {
			u, err := m.users.FindByID(ctx, e.UserID)
			switch {
			case errors.Is(err, shared.ErrNotFound):
				// Entries of removed accounts are not joinable, matching the SQL inner join.
				continue
			case err != nil:
				return nil, err
			}
			owner = Owner{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
			owners[e.UserID] = owner
		}
		out = append(out, EntryWithOwner{TimeEntry: e, Owner: owner})
	}
	sortNewestFirst(out, func(e EntryWithOwner) TimeEntry { return e.TimeEntry })
	return out, nil
}

func sortNewestFirst[T any](items []T, entry func(T) TimeEntry) {
	sort.Slice(items, func(i, j int) bool {
		a, b := entry(items[i]), entry(items[j])
		if !a.ClockInTime.Equal(b.ClockInTime) {
			return a.ClockInTime.After(b.ClockInTime)
		}
		return a.ID.String() < b.ID.String()
	})
}

var _ Repository = (*MemoryRepository)(nil)
