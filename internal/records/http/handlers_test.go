package recordshttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ekonum/internal/platform/httpx"
	"github.com/odyssey-erp/ekonum/internal/records"
	"github.com/odyssey-erp/ekonum/internal/records/memory"
)

func newRouter(store *memory.Store) http.Handler {
	router := chi.NewRouter()
	NewHandler(nil, store).MountRoutes(router)
	return router
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestListEndpoints(t *testing.T) {
	store := memory.New(records.Snapshot{
		Offers:  []records.Offer{{ID: 1, Name: "support", Type: records.OfferRecurring}},
		Loans:   []records.Loan{{ID: 2, Name: "bank", Principal: 500, AnnualRate: 0.05, TermMonths: 6}},
		Actuals: []records.ActualEntry{{ID: 3, EntryDate: time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), Category: records.CategoryAmortization, Amount: 10}},
	})
	router := newRouter(store)

	rr := get(router, "/api/offers")
	require.Equal(t, http.StatusOK, rr.Code)
	var offers []records.Offer
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &offers))
	require.Len(t, offers, 1)
	assert.Equal(t, "support", offers[0].Name)

	rr = get(router, "/api/actuals")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"category":"amortization"`)

	for _, path := range []string{"/api/contracts", "/api/payments", "/api/fixed-costs", "/api/assets"} {
		rr := get(router, path)
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.JSONEq(t, `[]`, rr.Body.String(), path)
	}
}

func TestListPropagatesStoreErrors(t *testing.T) {
	store := memory.New(records.Snapshot{})
	store.FailWith(records.ErrUnknownCategory)
	rr := get(newRouter(store), "/api/actuals")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	store.FailWith(httpx.ErrUnavailable)
	rr = get(newRouter(store), "/api/loans")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
