package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskForecastWarmup recomputes and caches forecast reports.
	TaskForecastWarmup = "forecast:warmup"
)

// WarmupWindow selects one fiscal window to precompute.
type WarmupWindow struct {
	StartYear int `json:"start_year"`
	Years     int `json:"years"`
}

// WarmupPayload describes a warmup run. Empty Windows falls back to the
// worker's configured windows.
type WarmupPayload struct {
	Windows     []WarmupWindow `json:"windows,omitempty"`
	InitialCash *float64       `json:"initial_cash,omitempty"`
	Invalidate  bool           `json:"invalidate"`
}

// NewWarmupTask constructs a warmup task with a unique id.
func NewWarmupTask(payload WarmupPayload, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("jobs: marshal warmup payload: %w", err)
	}
	opts = append([]asynq.Option{asynq.TaskID(uuid.NewString()), asynq.Queue(QueueDefault)}, opts...)
	return asynq.NewTask(TaskForecastWarmup, data, opts...), nil
}
