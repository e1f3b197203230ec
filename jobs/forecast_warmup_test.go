package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ekonum/internal/forecast"
	jobmetrics "github.com/odyssey-erp/ekonum/internal/jobs"
	"github.com/odyssey-erp/ekonum/internal/records"
	"github.com/odyssey-erp/ekonum/internal/records/memory"
)

type stubForecaster struct {
	requests    []forecast.ProjectionRequest
	invalidated int
	err         error
}

func (s *stubForecaster) ComputeProjection(ctx context.Context, req forecast.ProjectionRequest) (forecast.Projection, error) {
	s.requests = append(s.requests, req)
	return forecast.Projection{}, s.err
}

func (s *stubForecaster) ComputeBudgetVsActual(ctx context.Context, req forecast.ProjectionRequest) (forecast.BudgetVsActual, error) {
	return forecast.BudgetVsActual{}, s.err
}

func (s *stubForecaster) Invalidate(ctx context.Context) error {
	s.invalidated++
	return nil
}

func newJob(svc Forecaster) *ForecastWarmupJob {
	return NewForecastWarmupJob(svc, []WarmupWindow{{StartYear: 2024, Years: 3}}, 100, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
}

func TestWarmupUsesConfiguredWindows(t *testing.T) {
	svc := &stubForecaster{}
	task, err := NewWarmupTask(WarmupPayload{Invalidate: true})
	require.NoError(t, err)

	require.NoError(t, newJob(svc).Handle(context.Background(), task))
	assert.Equal(t, 1, svc.invalidated)
	assert.Equal(t, []forecast.ProjectionRequest{{StartYear: 2024, Years: 3, InitialCash: 100}}, svc.requests)
}

func TestWarmupPayloadOverridesWindows(t *testing.T) {
	svc := &stubForecaster{}
	cash := 5.0
	err := newJob(svc).Run(context.Background(), WarmupPayload{
		Windows:     []WarmupWindow{{StartYear: 2023, Years: 1}, {StartYear: 2025, Years: 2}},
		InitialCash: &cash,
	})
	require.NoError(t, err)
	assert.Zero(t, svc.invalidated)
	require.Len(t, svc.requests, 2)
	assert.Equal(t, forecast.ProjectionRequest{StartYear: 2025, Years: 2, InitialCash: 5}, svc.requests[1])
}

func TestWarmupStopsOnError(t *testing.T) {
	svc := &stubForecaster{err: forecast.ErrInvalidWindow}
	err := newJob(svc).Run(context.Background(), WarmupPayload{Windows: []WarmupWindow{{StartYear: 2024, Years: 11}, {StartYear: 2024, Years: 1}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, forecast.ErrInvalidWindow))
	assert.Len(t, svc.requests, 1)
}

func TestWarmupRejectsMalformedPayload(t *testing.T) {
	err := newJob(&stubForecaster{}).Handle(context.Background(), asynq.NewTask(TaskForecastWarmup, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestWarmupAgainstService(t *testing.T) {
	store := memory.New(records.Snapshot{
		Fixed: []records.FixedCost{{ID: 1, MonthlyAmount: 10, StartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}},
	})
	svc := forecast.NewService(store, nil, nil)
	require.NoError(t, newJob(svc).Run(context.Background(), WarmupPayload{Invalidate: true}))
}

func TestNewWarmupTaskAssignsID(t *testing.T) {
	a, err := NewWarmupTask(WarmupPayload{})
	require.NoError(t, err)
	assert.Equal(t, TaskForecastWarmup, a.Type())

	var payload WarmupPayload
	require.NoError(t, json.Unmarshal(a.Payload(), &payload))
	assert.False(t, payload.Invalidate)
}
