package users

import (
	"context"
	"fmt"

	"github.com/schooner-time/timeclock/internal/shared"
)

// Service handles user business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users. Manager only.
func (s *Service) ListUsers(ctx context.Context, caller shared.Principal) ([]User, error) {
	if !caller.IsManager() {
		return nil, fmt.Errorf("%w: manager role required", shared.ErrForbidden)
	}
	return s.repo.ListUsers(ctx)
}
