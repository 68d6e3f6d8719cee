package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/schooner-time/timeclock/internal/platform/httpx"
	"github.com/schooner-time/timeclock/internal/shared"
)

// Authenticator verifies a raw credential. *Gate satisfies it.
type Authenticator interface {
	Authenticate(raw string) (shared.Principal, error)
}

// Middleware wires the gate into HTTP handlers.
type Middleware struct {
	Gate   Authenticator
	Logger *slog.Logger
}

// Authenticate rejects requests without a valid bearer credential and stores
// the verified principal in the request context.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			m.reject(r, fmt.Errorf("%w: bearer token required", shared.ErrUnauthorized))
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		principal, err := m.Gate.Authenticate(raw)
		if err != nil {
			m.reject(r, err)
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}

// RequireRole ensures the authenticated caller holds exactly role.
func (m Middleware) RequireRole(role shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}
			if err := Authorize(principal.Role, role); err != nil {
				if m.Logger != nil {
					m.Logger.Warn("role check failed",
						slog.String("user_id", principal.UserID.String()),
						slog.String("role", string(principal.Role)),
						slog.String("path", r.URL.Path))
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) reject(r *http.Request, err error) {
	if m.Logger == nil {
		return
	}
	m.Logger.Warn("credential rejected",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
