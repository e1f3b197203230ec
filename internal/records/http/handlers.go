// Package recordshttp exposes read-only listings of forecast records.
package recordshttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/ekonum/internal/platform/httpx"
	"github.com/odyssey-erp/ekonum/internal/records"
)

const requestTimeout = 5 * time.Second

// Handler lists record sets straight from the repository.
type Handler struct {
	logger *slog.Logger
	repo   records.Repository
}

// NewHandler constructs the record listing handler.
func NewHandler(logger *slog.Logger, repo records.Repository) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes registers the listing endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/api/offers", list(h, h.repo.ListOffers))
	r.Get("/api/contracts", list(h, h.repo.ListContracts))
	r.Get("/api/payments", list(h, h.repo.ListPaymentEvents))
	r.Get("/api/fixed-costs", list(h, h.repo.ListFixedCosts))
	r.Get("/api/assets", list(h, h.repo.ListAssets))
	r.Get("/api/loans", list(h, h.repo.ListLoans))
	r.Get("/api/actuals", list(h, h.repo.ListActuals))
}

func list[T any](h *Handler, fetch func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		items, err := fetch(ctx)
		if err != nil {
			httpx.RespondError(w, h.logger, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		httpx.JSON(w, http.StatusOK, items)
	}
}
