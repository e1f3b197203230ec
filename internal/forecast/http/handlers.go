// Package forecasthttp exposes the forecast engine over HTTP.
package forecasthttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/ekonum/internal/forecast"
	"github.com/odyssey-erp/ekonum/internal/platform/httpx"
)

const (
	requestTimeout = 10 * time.Second
	defaultYears   = 3
)

// Service is the forecast contract consumed by the handler.
type Service interface {
	ComputeProjection(ctx context.Context, req forecast.ProjectionRequest) (forecast.Projection, error)
	ComputeBudgetVsActual(ctx context.Context, req forecast.ProjectionRequest) (forecast.BudgetVsActual, error)
	LoanSchedule(ctx context.Context, loanID int64) (forecast.LoanSchedule, error)
}

// Handler serves projection, variance and loan schedule endpoints.
type Handler struct {
	logger      *slog.Logger
	service     Service
	initialCash float64
}

// NewHandler constructs the forecast HTTP handler. initialCash is used when
// the request does not carry one.
func NewHandler(logger *slog.Logger, service Service, initialCash float64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, initialCash: initialCash}
}

func (h *Handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.ComputeProjection(ctx, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleBudgetVsActual(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.ComputeBudgetVsActual(ctx, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleProjectionCSV(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.ComputeProjection(ctx, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	filename := fmt.Sprintf("projection-%d-%dy.csv", req.StartYear, req.Years)
	if err := httpx.CSV(w, filename, forecast.ExportStatements(result.Periods)); err != nil {
		h.logger.Error("write projection csv", slog.Any("error", err))
	}
}

func (h *Handler) handleBudgetVsActualCSV(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.ComputeBudgetVsActual(ctx, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	filename := fmt.Sprintf("budget-vs-actual-%d-%dy.csv", req.StartYear, req.Years)
	if err := httpx.CSV(w, filename, forecast.ExportVariance(result.Rows)); err != nil {
		h.logger.Error("write variance csv", slog.Any("error", err))
	}
}

func (h *Handler) handleLoanSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, h.logger, fmt.Errorf("%w: loan id must be a positive integer", httpx.ErrValidation))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	schedule, err := h.service.LoanSchedule(ctx, id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, schedule)
}

// parseRequest reads the required start_year plus years and initial_cash from
// the query string.
func (h *Handler) parseRequest(r *http.Request) (forecast.ProjectionRequest, error) {
	if strings.TrimSpace(r.URL.Query().Get("start_year")) == "" {
		return forecast.ProjectionRequest{}, fmt.Errorf("%w: start_year is required", httpx.ErrValidation)
	}
	startYear, err := httpx.QueryInt(r, "start_year", 0)
	if err != nil {
		return forecast.ProjectionRequest{}, err
	}
	years, err := httpx.QueryInt(r, "years", defaultYears)
	if err != nil {
		return forecast.ProjectionRequest{}, err
	}
	initialCash, err := httpx.QueryFloat(r, "initial_cash", h.initialCash)
	if err != nil {
		return forecast.ProjectionRequest{}, err
	}
	return forecast.ProjectionRequest{StartYear: startYear, Years: years, InitialCash: initialCash}, nil
}
