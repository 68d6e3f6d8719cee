package jobs

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/schooner-time/timeclock/internal/jobs"
	"github.com/schooner-time/timeclock/internal/observability"
	"github.com/schooner-time/timeclock/internal/timeclock"
)

func TestMetricsRouterExposesStaleGauge(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	metrics := observability.NewMetrics()
	src := &stubSource{entries: []timeclock.EntryWithOwner{
		activeEntry("forgot@example.com", timeclock.StatusClockedIn, now.Add(-20*time.Hour)),
		activeEntry("break@example.com", timeclock.StatusOnBreak, now.Add(-30*time.Hour)),
	}}
	job := NewStaleEntryScanJob(src, slog.New(slog.NewTextHandler(io.Discard, nil)), jobmetrics.NewMetrics(metrics.Registerer()))
	job.clock = func() time.Time { return now }

	_, err := job.Scan(context.Background(), 16*time.Hour)
	require.NoError(t, err)

	h := MetricsRouter(metrics.Handler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "timeclock_stale_entries 2")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
