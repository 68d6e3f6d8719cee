package users

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/schooner-time/timeclock/internal/shared"
)

// MemoryRepository keeps users in process. It backs STORE_BACKEND=memory and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]User
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[uuid.UUID]User),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

// Add stores u, assigning an ID and creation time when missing.
func (m *MemoryRepository) Add(u User) (User, error) {
	if !u.Role.IsValid() {
		return User{}, fmt.Errorf("%w: unknown role %q", shared.ErrValidation, u.Role)
	}
	email := normalizeEmail(u.Email)
	if email == "" {
		return User{}, fmt.Errorf("%w: email required", shared.ErrValidation)
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now().UTC()
	}
	u.Email = email

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byEmail[email]; ok && existing != u.ID {
		return User{}, fmt.Errorf("%w: email %s already registered", shared.ErrValidation, email)
	}
	m.byID[u.ID] = u
	m.byEmail[email] = u.ID
	return u, nil
}

// FindByEmail looks a user up by case-insensitive email.
func (m *MemoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[normalizeEmail(email)]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return m.byID[id], nil
}

// FindByID looks a user up by id.
func (m *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

// ListUsers returns all users ordered by name.
func (m *MemoryRepository) ListUsers(_ context.Context) ([]User, error) {
	m.mu.RLock()
	out := make([]User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
