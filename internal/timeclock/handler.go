package timeclock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/schooner-time/timeclock/internal/auth"
	"github.com/schooner-time/timeclock/internal/platform/httpx"
	"github.com/schooner-time/timeclock/internal/shared"
)

// Handler manages time entry HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     auth.Middleware
	validator *validator.Validate
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service, guard auth.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers routes on the router. Every route requires a valid
// credential; /all and /active additionally require the manager role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Authenticate)
		r.Post("/clock-in", h.transition(h.service.ClockIn, http.StatusCreated, "Clocked in successfully"))
		r.Post("/start-break", h.transition(h.service.StartBreak, http.StatusOK, "Break started successfully"))
		r.Post("/end-break", h.transition(h.service.EndBreak, http.StatusOK, "Break ended successfully"))
		r.Post("/clock-out", h.transition(h.service.ClockOut, http.StatusOK, "Clocked out successfully"))
		r.Get("/my-entries", h.myEntries)

		r.Group(func(r chi.Router) {
			r.Use(h.guard.RequireRole(shared.RoleManager))
			r.Get("/all", h.allEntries)
			r.Get("/active", h.activeRoster)
		})
	})
}

type transitionFunc func(ctx context.Context, caller shared.Principal) (TimeEntry, error)

func (h *Handler) transition(fn transitionFunc, status int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := shared.PrincipalFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		entry, err := fn(r.Context(), caller)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, status, transitionResponse{Message: message, TimeEntry: toEntryResponse(entry)})
	}
}

func (h *Handler) myEntries(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	entries, err := h.service.EntriesForUser(r.Context(), caller)
	if err != nil {
		h.logger.Error("list my entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	httpx.JSON(w, http.StatusOK, entriesResponse{TimeEntries: out})
}

func (h *Handler) allEntries(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.PrincipalFromContext(r.Context())
	filter, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.AllEntries(r.Context(), caller, filter)
	if err != nil {
		if !errors.Is(err, shared.ErrValidation) && !errors.Is(err, shared.ErrForbidden) {
			h.logger.Error("list all entries", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entriesResponse{TimeEntries: toOwnedResponses(entries)})
}

func (h *Handler) activeRoster(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.PrincipalFromContext(r.Context())
	entries, err := h.service.ActiveRoster(r.Context(), caller)
	if err != nil {
		if !errors.Is(err, shared.ErrForbidden) {
			h.logger.Error("list active roster", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rosterResponse{ActiveEmployees: toOwnedResponses(entries)})
}

func (h *Handler) parseFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	raw := listQuery{
		From:   strings.TrimSpace(q.Get("from")),
		To:     strings.TrimSpace(q.Get("to")),
		Status: strings.TrimSpace(q.Get("status")),
		UserID: strings.TrimSpace(q.Get("userId")),
	}
	if err := h.validator.Struct(raw); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return ListFilter{}, fmt.Errorf("%w: invalid %s %q", shared.ErrValidation, queryName(fe.Field()), fe.Value())
		}
		return ListFilter{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	var filter ListFilter
	if raw.From != "" {
		from, _ := time.Parse(DateLayout, raw.From)
		filter.From = &from
	}
	if raw.To != "" {
		to, _ := time.Parse(DateLayout, raw.To)
		filter.To = &to
	}
	filter.Status = Status(raw.Status)
	if raw.UserID != "" {
		id, err := uuid.Parse(raw.UserID)
		if err != nil {
			return ListFilter{}, fmt.Errorf("%w: invalid userId %q", shared.ErrValidation, raw.UserID)
		}
		filter.UserID = id
	}
	return filter, nil
}

func queryName(field string) string {
	switch field {
	case "UserID":
		return "userId"
	default:
		return strings.ToLower(field)
	}
}
