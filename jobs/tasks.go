package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStaleEntryScan reports active time entries that look forgotten.
	TaskStaleEntryScan = "timeclock:stale_scan"
	// DefaultStaleAfter is used when a payload carries no threshold.
	DefaultStaleAfter = 16 * time.Hour
)

// StaleScanPayload configures one stale entry scan.
type StaleScanPayload struct {
	Threshold string `json:"threshold"`
}

// threshold parses the payload threshold, falling back to DefaultStaleAfter.
func (p StaleScanPayload) threshold() (time.Duration, error) {
	if p.Threshold == "" {
		return DefaultStaleAfter, nil
	}
	d, err := time.ParseDuration(p.Threshold)
	if err != nil {
		return 0, fmt.Errorf("stale scan: threshold %q: %w", p.Threshold, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("stale scan: threshold must be positive, got %s", d)
	}
	return d, nil
}

// NewStaleScanTask constructs an Asynq task for the stale entry scan.
func NewStaleScanTask(threshold time.Duration) (*asynq.Task, error) {
	if threshold <= 0 {
		threshold = DefaultStaleAfter
	}
	body, err := json.Marshal(StaleScanPayload{Threshold: threshold.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStaleEntryScan, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
