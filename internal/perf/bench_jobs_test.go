package perf

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/odyssey-erp/ekonum/internal/forecast"
	jobmetrics "github.com/odyssey-erp/ekonum/internal/jobs"
	"github.com/odyssey-erp/ekonum/internal/records/memory"
	"github.com/odyssey-erp/ekonum/jobs"
)

func TestWarmupJobThroughputAndReliability(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	store := memory.New(largeSnapshot())
	svc := forecast.NewService(store, nil, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	windows := []jobs.WarmupWindow{{StartYear: 2020, Years: 10}, {StartYear: 2024, Years: 3}}
	job := jobs.NewForecastWarmupJob(svc, windows, 0, logger, metrics)

	for i := 0; i < 20; i++ {
		if err := job.Run(context.Background(), jobs.WarmupPayload{}); err != nil {
			t.Fatalf("warmup run %d: %v", i, err)
		}
	}

	// A failing store must surface as a failed run, not a silent success.
	store.FailWith(context.DeadlineExceeded)
	for i := 0; i < 2; i++ {
		if err := job.Run(context.Background(), jobs.WarmupPayload{}); err == nil {
			t.Fatal("expected error to propagate")
		}
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	success := metricValue(t, families, "ekonum_jobs_total", map[string]string{"job": jobs.TaskForecastWarmup, "status": "success"})
	failure := metricValue(t, families, "ekonum_jobs_total", map[string]string{"job": jobs.TaskForecastWarmup, "status": "failure"})
	if success != 20 || failure != 2 {
		t.Fatalf("unexpected run counts: success=%v failure=%v", success, failure)
	}
	ratio := success / (success + failure)
	if ratio < 0.9 {
		t.Fatalf("warmup success ratio too low: %f", ratio)
	}

	warmed := metricValue(t, families, "ekonum_forecast_windows_warmed_total", map[string]string{"kind": forecast.KindProjection})
	if warmed != 40 {
		t.Fatalf("expected 40 warmed projection windows, got %v", warmed)
	}

	meanDuration := histogramMean(t, families, "ekonum_job_duration_seconds", map[string]string{"job": jobs.TaskForecastWarmup})
	if meanDuration > 2.0 {
		t.Fatalf("warmup duration above budget: %f", meanDuration)
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				if fam.GetType() == dto.MetricType_COUNTER {
					return metric.GetCounter().GetValue()
				}
				if fam.GetType() == dto.MetricType_GAUGE {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	for _, lp := range metric.GetLabel() {
		if val, ok := labels[lp.GetName()]; ok {
			if lp.GetValue() != val {
				return false
			}
		}
	}
	for key := range labels {
		found := false
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == key {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
