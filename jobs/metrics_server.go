package jobs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/schooner-time/timeclock/internal/platform/httpx"
)

// MetricsRouter exposes the worker's registry at /metrics alongside a liveness
// probe. The worker runs no API, so this is the only scrape target for job metrics.
func MetricsRouter(metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics)
	return r
}
