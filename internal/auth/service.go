package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/schooner-time/timeclock/internal/shared"
	"github.com/schooner-time/timeclock/internal/users"
)

// TokenIssuer signs credentials. *Issuer satisfies it.
type TokenIssuer interface {
	Issue(userID uuid.UUID, role shared.Role, email string) (string, time.Time, error)
}

// Service wraps authentication business rules.
type Service struct {
	users  users.Repository
	issuer TokenIssuer
}

// NewService constructs a new Service.
func NewService(repo users.Repository, issuer TokenIssuer) *Service {
	return &Service{users: repo, issuer: issuer}
}

// Login validates email/password credentials and issues a session credential.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return LoginResult{}, shared.ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("auth: find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, shared.ErrInvalidCredentials
	}
	token, expiresAt, err := s.issuer.Issue(user.ID, user.Role, user.Email)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
