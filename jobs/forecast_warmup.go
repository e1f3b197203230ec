package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/ekonum/internal/forecast"
	jobmetrics "github.com/odyssey-erp/ekonum/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const windowTimeout = 30 * time.Second

// Forecaster is the forecast contract used by the warmup job.
type Forecaster interface {
	ComputeProjection(ctx context.Context, req forecast.ProjectionRequest) (forecast.Projection, error)
	ComputeBudgetVsActual(ctx context.Context, req forecast.ProjectionRequest) (forecast.BudgetVsActual, error)
	Invalidate(ctx context.Context) error
}

// ForecastWarmupJob precomputes projections and budget-vs-actual reports so
// the first request after a record change is served from cache.
type ForecastWarmupJob struct {
	Forecast    Forecaster
	Windows     []WarmupWindow
	InitialCash float64
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
}

// NewForecastWarmupJob wires dependencies for the warmup handler.
func NewForecastWarmupJob(svc Forecaster, windows []WarmupWindow, initialCash float64, logger *slog.Logger, metrics *jobmetrics.Metrics) *ForecastWarmupJob {
	return &ForecastWarmupJob{
		Forecast:    svc,
		Windows:     windows,
		InitialCash: initialCash,
		Logger:      logger,
		Metrics:     metrics,
	}
}

// Handle processes forecast warmup tasks.
func (j *ForecastWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Forecast == nil {
		return errors.New("forecast warmup: handler not configured")
	}
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("forecast warmup: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	return j.Run(ctx, payload)
}

// Run executes one warmup pass.
func (j *ForecastWarmupJob) Run(ctx context.Context, payload WarmupPayload) (resultErr error) {
	tracker := j.metrics().Track(TaskForecastWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	windows := payload.Windows
	if len(windows) == 0 {
		windows = j.Windows
	}
	initialCash := j.InitialCash
	if payload.InitialCash != nil {
		initialCash = *payload.InitialCash
	}

	logger := j.logger().With(slog.Int("windows", len(windows)), slog.Bool("invalidate", payload.Invalidate))
	logger.Info("starting forecast warmup")
	started := time.Now()

	if payload.Invalidate {
		if err := j.Forecast.Invalidate(ctx); err != nil {
			logger.Error("invalidate forecast cache", slog.Any("error", err))
			return err
		}
	}

	for _, w := range windows {
		req := forecast.ProjectionRequest{StartYear: w.StartYear, Years: w.Years, InitialCash: initialCash}
		if err := j.warmWindow(ctx, req); err != nil {
			logger.Error("warm window", slog.Int("start_year", w.StartYear), slog.Int("years", w.Years), slog.Any("error", err))
			return err
		}
	}
	j.metrics().AddWarmed(forecast.KindProjection, len(windows))
	j.metrics().AddWarmed(forecast.KindBudgetVsActual, len(windows))

	logger.Info("completed forecast warmup", slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *ForecastWarmupJob) warmWindow(ctx context.Context, req forecast.ProjectionRequest) error {
	windowCtx, cancel := context.WithTimeout(ctx, windowTimeout)
	defer cancel()

	if _, err := j.Forecast.ComputeProjection(windowCtx, req); err != nil {
		return fmt.Errorf("projection: %w", err)
	}
	if _, err := j.Forecast.ComputeBudgetVsActual(windowCtx, req); err != nil {
		return fmt.Errorf("budget vs actual: %w", err)
	}
	return nil
}

func (j *ForecastWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskForecastWarmup))
	}
	return slog.Default().With(slog.String("job", TaskForecastWarmup))
}

func (j *ForecastWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
