package jobs

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func serveHealth(h *Handler) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Route("/jobs", h.MountRoutes)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	return rr
}

func TestHealthReportsQueueInfo(t *testing.T) {
	rr := serveHealth(NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Failed: 1}}, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body queueHealth
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, queueHealth{Queue: QueueDefault, Pending: 3, Failed: 1}, body)
}

func TestHealthWithoutInspector(t *testing.T) {
	rr := serveHealth(NewHandler(nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"scheduled":0,"retry":0,"failed":0}`, rr.Body.String())
}

func TestHealthQueueUnreachable(t *testing.T) {
	rr := serveHealth(NewHandler(stubInspector{err: errors.New("dial tcp: refused")}, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
