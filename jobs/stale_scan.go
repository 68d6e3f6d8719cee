package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/schooner-time/timeclock/internal/jobs"
	"github.com/schooner-time/timeclock/internal/timeclock"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ActiveEntrySource lists the entries currently clocked_in or on_break.
type ActiveEntrySource interface {
	ListActive(ctx context.Context) ([]timeclock.EntryWithOwner, error)
}

// StaleEntry is an active entry that has been open longer than the scan threshold.
type StaleEntry struct {
	EntryID uuid.UUID
	UserID  uuid.UUID
	Email   string
	Status  timeclock.Status
	OpenFor time.Duration
}

// StaleEntryScanJob reports entries whose owner appears to have forgotten to
// clock out. It never modifies entries.
type StaleEntryScanJob struct {
	Source  ActiveEntrySource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewStaleEntryScanJob initialises the stale scan handler.
func NewStaleEntryScanJob(source ActiveEntrySource, logger *slog.Logger, metrics *jobmetrics.Metrics) *StaleEntryScanJob {
	return &StaleEntryScanJob{
		Source:  source,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the stale entry scan for an Asynq task.
func (j *StaleEntryScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Source == nil {
		return errors.New("stale scan: handler not configured")
	}
	var payload StaleScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("stale scan: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	threshold, err := payload.threshold()
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskStaleEntryScan)
	_, err = j.Scan(ctx, threshold)
	return tracker.End(err)
}

// Scan lists active entries and returns those open for longer than threshold.
func (j *StaleEntryScanJob) Scan(ctx context.Context, threshold time.Duration) ([]StaleEntry, error) {
	active, err := j.Source.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("stale scan: list active: %w", err)
	}

	now := j.now()
	stale := make([]StaleEntry, 0)
	for _, entry := range active {
		open := now.Sub(entry.ClockInTime)
		if open <= threshold {
			continue
		}
		item := StaleEntry{
			EntryID: entry.ID,
			UserID:  entry.UserID,
			Email:   entry.Owner.Email,
			Status:  entry.Status,
			OpenFor: open,
		}
		stale = append(stale, item)
		j.logger().Warn("stale time entry",
			slog.String("entry_id", item.EntryID.String()),
			slog.String("user_id", item.UserID.String()),
			slog.String("email", item.Email),
			slog.String("status", string(item.Status)),
			slog.Duration("open_for", item.OpenFor.Truncate(time.Minute)),
		)
	}

	j.metrics().SetStaleEntries(len(stale))
	j.logger().Info("stale scan completed",
		slog.Int("active", len(active)),
		slog.Int("stale", len(stale)),
		slog.Duration("threshold", threshold),
	)
	return stale, nil
}

func (j *StaleEntryScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *StaleEntryScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *StaleEntryScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
