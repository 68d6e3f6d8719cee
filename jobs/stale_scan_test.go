package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/schooner-time/timeclock/internal/jobs"
	"github.com/schooner-time/timeclock/internal/timeclock"
)

type stubSource struct {
	entries []timeclock.EntryWithOwner
	err     error
	calls   int
}

func (s *stubSource) ListActive(context.Context) ([]timeclock.EntryWithOwner, error) {
	s.calls++
	return s.entries, s.err
}

func activeEntry(email string, status timeclock.Status, clockIn time.Time) timeclock.EntryWithOwner {
	entry := timeclock.NewEntry(uuid.New(), clockIn)
	entry.Status = status
	return timeclock.EntryWithOwner{
		TimeEntry: entry,
		Owner:     timeclock.Owner{ID: entry.UserID, Email: email},
	}
}

func newScanJob(src ActiveEntrySource, now time.Time) (*StaleEntryScanJob, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	job := NewStaleEntryScanJob(src, slog.New(slog.NewTextHandler(io.Discard, nil)), jobmetrics.NewMetrics(reg))
	job.clock = func() time.Time { return now }
	return job, reg
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("gauge %s not found", name)
	return 0
}

func TestStaleScanReportsEntriesPastThreshold(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	src := &stubSource{entries: []timeclock.EntryWithOwner{
		activeEntry("fresh@example.com", timeclock.StatusClockedIn, now.Add(-2*time.Hour)),
		activeEntry("forgot@example.com", timeclock.StatusClockedIn, now.Add(-20*time.Hour)),
		activeEntry("break@example.com", timeclock.StatusOnBreak, now.Add(-30*time.Hour)),
	}}
	job, reg := newScanJob(src, now)

	stale, err := job.Scan(context.Background(), 16*time.Hour)
	require.NoError(t, err)
	require.Len(t, stale, 2)
	assert.Equal(t, "forgot@example.com", stale[0].Email)
	assert.Equal(t, 20*time.Hour, stale[0].OpenFor)
	assert.Equal(t, timeclock.StatusOnBreak, stale[1].Status)
	assert.Equal(t, float64(2), gaugeValue(t, reg, "timeclock_stale_entries"))
}

func TestStaleScanLeavesEntriesUntouched(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	entry := activeEntry("forgot@example.com", timeclock.StatusClockedIn, now.Add(-20*time.Hour))
	src := &stubSource{entries: []timeclock.EntryWithOwner{entry}}
	job, _ := newScanJob(src, now)

	_, err := job.Scan(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, entry, src.entries[0])
	assert.Nil(t, src.entries[0].ClockOutTime)
}

func TestStaleScanHandleUsesPayloadThreshold(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	src := &stubSource{entries: []timeclock.EntryWithOwner{
		activeEntry("a@example.com", timeclock.StatusClockedIn, now.Add(-90*time.Minute)),
	}}
	job, reg := newScanJob(src, now)

	task, err := NewStaleScanTask(time.Hour)
	require.NoError(t, err)
	require.Equal(t, TaskStaleEntryScan, task.Type())

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, float64(1), gaugeValue(t, reg, "timeclock_stale_entries"))
}

func TestStaleScanHandleDefaultsThreshold(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	src := &stubSource{entries: []timeclock.EntryWithOwner{
		activeEntry("a@example.com", timeclock.StatusClockedIn, now.Add(-10*time.Hour)),
	}}
	job, reg := newScanJob(src, now)

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskStaleEntryScan, nil)))
	assert.Equal(t, float64(0), gaugeValue(t, reg, "timeclock_stale_entries"))
}

func TestStaleScanHandleRejectsBadPayload(t *testing.T) {
	job, _ := newScanJob(&stubSource{}, time.Now())

	err := job.Handle(context.Background(), asynq.NewTask(TaskStaleEntryScan, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	body, _ := json.Marshal(StaleScanPayload{Threshold: "-1h"})
	err = job.Handle(context.Background(), asynq.NewTask(TaskStaleEntryScan, body))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestStaleScanPropagatesSourceError(t *testing.T) {
	boom := errors.New("db down")
	job, _ := newScanJob(&stubSource{err: boom}, time.Now())

	err := job.Handle(context.Background(), asynq.NewTask(TaskStaleEntryScan, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}
