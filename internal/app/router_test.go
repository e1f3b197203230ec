package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ekonum/internal/forecast"
	forecasthttp "github.com/odyssey-erp/ekonum/internal/forecast/http"
	"github.com/odyssey-erp/ekonum/internal/observability"
	"github.com/odyssey-erp/ekonum/internal/records"
	recordshttp "github.com/odyssey-erp/ekonum/internal/records/http"
	"github.com/odyssey-erp/ekonum/internal/records/memory"
	"github.com/odyssey-erp/ekonum/jobs"
)

func newTestRouter(t *testing.T) (http.Handler, *observability.Metrics) {
	t.Helper()
	store := memory.New(records.Snapshot{
		Fixed: []records.FixedCost{{ID: 1, Name: "rent", MonthlyAmount: 100, StartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}},
	})
	metrics := observability.NewMetrics()
	svc := forecast.NewService(store, nil, nil).WithRecorder(metrics)
	cfg := &Config{AppEnv: "development", AppRequestTimeout: 5 * time.Second}
	router := NewRouter(RouterParams{
		Config:          cfg,
		ForecastHandler: forecasthttp.NewHandler(nil, svc, 0),
		RecordsHandler:  recordshttp.NewHandler(nil, store),
		JobHandler:      jobs.NewHandler(nil, nil),
		Metrics:         metrics,
	})
	return router, metrics
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestRouterServesEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, target := range []string{
		"/healthz",
		"/api/projections?start_year=2024&years=1",
		"/api/budget-vs-actual?start_year=2024&years=1",
		"/api/fixed-costs",
		"/jobs/health",
		"/metrics",
	} {
		rr := get(t, router, target)
		assert.Equal(t, http.StatusOK, rr.Code, target)
	}
	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/unknown").Code)
}

func TestRouterSetsSecurityHeaders(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := get(t, router, "/healthz")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestRouterRecordsMetrics(t *testing.T) {
	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusOK, get(t, router, "/api/projections?start_year=2024&years=1").Code)

	body := get(t, router, "/metrics").Body.String()
	assert.Contains(t, body, `ekonum_forecast_computations_total{kind="projection",status="success"} 1`)
	assert.Contains(t, body, `route="/api/projections"`)
}
