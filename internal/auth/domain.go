package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/schooner-time/timeclock/internal/users"
)

// Claims is the payload of a session credential. The subject carries the user ID.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// GateConfig binds credentials to one signing key and issuer/audience pair.
type GateConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      users.User
}
