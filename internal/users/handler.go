package users

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/schooner-time/timeclock/internal/platform/httpx"
	"github.com/schooner-time/timeclock/internal/shared"
)

// Guard authenticates requests and enforces roles. auth.Middleware satisfies it.
type Guard interface {
	Authenticate(next http.Handler) http.Handler
	RequireRole(role shared.Role) func(http.Handler) http.Handler
}

// Handler manages user directory endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   Guard
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Authenticate)
		r.Use(h.guard.RequireRole(shared.RoleManager))
		r.Get("/", h.listUsers)
	})
}

type userResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type listResponse struct {
	Users []userResponse `json:"users"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.PrincipalFromContext(r.Context())
	list, err := h.service.ListUsers(r.Context(), caller)
	if err != nil {
		if !errors.Is(err, shared.ErrForbidden) {
			h.logger.Error("list users failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, userResponse{
			ID:        u.ID.String(),
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Role:      string(u.Role),
			CreatedAt: u.CreatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, listResponse{Users: out})
}
