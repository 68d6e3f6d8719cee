package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/schooner-time/timeclock/internal/shared"
)

// Gate verifies session credentials. It holds no mutable state and is safe
// for concurrent use.
type Gate struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

// NewGate constructs a Gate. Secret, issuer and audience are all required.
func NewGate(cfg GateConfig) (*Gate, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Gate{
		secret:   append([]byte(nil), cfg.Secret...),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      time.Now,
	}, nil
}

func (c GateConfig) validate() error {
	switch {
	case len(c.Secret) == 0:
		return errors.New("auth: signing secret required")
	case c.Issuer == "":
		return errors.New("auth: issuer required")
	case c.Audience == "":
		return errors.New("auth: audience required")
	}
	return nil
}

// Authenticate verifies raw and returns the caller it asserts. Every failure
// wraps shared.ErrUnauthorized.
func (g *Gate) Authenticate(raw string) (shared.Principal, error) {
	if raw == "" {
		return shared.Principal{}, fmt.Errorf("%w: empty credential", shared.ErrUnauthorized)
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, g.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(g.issuer),
		jwt.WithAudience(g.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return shared.Principal{}, fmt.Errorf("%w: %v", shared.ErrUnauthorized, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return shared.Principal{}, fmt.Errorf("%w: subject is not a user id", shared.ErrUnauthorized)
	}
	role, err := shared.ParseRole(claims.Role)
	if err != nil {
		return shared.Principal{}, fmt.Errorf("%w: %v", shared.ErrUnauthorized, err)
	}
	return shared.Principal{UserID: userID, Role: role, Email: claims.Email}, nil
}

func (g *Gate) key(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return g.secret, nil
}

// Authorize allows the call only when role matches required exactly.
func Authorize(role, required shared.Role) error {
	if role != required {
		return fmt.Errorf("%w: %s role required", shared.ErrForbidden, required)
	}
	return nil
}
