package shared

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the authenticated caller recovered from a credential.
type Principal struct {
	UserID uuid.UUID
	Role   Role
	Email  string
}

// IsManager reports whether the principal holds the manager role.
func (p Principal) IsManager() bool {
	return p.Role == RoleManager
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
