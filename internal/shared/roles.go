package shared

import "fmt"

// Role is the coarse authorization level carried by a credential.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// IsValid checks if the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleManager:
		return true
	default:
		return false
	}
}

// ParseRole converts a raw claim or column value into a Role. The match is
// exact: case and surrounding whitespace are significant.
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, raw)
	}
	return r, nil
}

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleEmployee, RoleManager}
}
