package forecasthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// exportsPerMinute bounds CSV exports per client address.
const exportsPerMinute = 10

// MountRoutes registers forecast endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(exportsPerMinute, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/api/projections", h.handleProjection)
	r.Get("/api/budget-vs-actual", h.handleBudgetVsActual)
	r.Get("/api/loans/{id}/schedule", h.handleLoanSchedule)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/api/projections/export.csv", h.handleProjectionCSV)
		gr.Get("/api/budget-vs-actual/export.csv", h.handleBudgetVsActualCSV)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
