package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/schooner-time/timeclock/internal/shared"
)

// User is an account able to authenticate and own time entries.
type User struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         shared.Role
	CreatedAt    time.Time
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
