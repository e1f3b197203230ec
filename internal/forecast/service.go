package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/ekonum/internal/platform/httpx"
	"github.com/odyssey-erp/ekonum/internal/records"
)

// sharedComputeTimeout bounds a deduplicated computation, which no longer
// follows the deadline of any single caller.
const sharedComputeTimeout = 30 * time.Second

// Computation kinds reported to the Recorder.
const (
	KindProjection     = "projection"
	KindBudgetVsActual = "budget_vs_actual"
	KindLoanSchedule   = "loan_schedule"
)

// Recorder observes engine computations.
type Recorder interface {
	ObserveComputation(kind string, started time.Time, err error)
}

// Service runs forecast computations against a record repository.
type Service struct {
	repo     records.Repository
	cache    *Cache
	logger   *slog.Logger
	recorder Recorder
	validate *validator.Validate
	group    singleflight.Group
}

// NewService wires a Repository with an optional Cache.
func NewService(repo records.Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, validate: validator.New()}
}

// WithRecorder attaches a computation observer.
func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

// ComputeProjection returns the budget statement for the requested window.
func (s *Service) ComputeProjection(ctx context.Context, req ProjectionRequest) (result Projection, err error) {
	started := time.Now()
	defer func() { s.observe(KindProjection, started, err) }()

	w, err := s.prepare(req)
	if err != nil {
		return Projection{}, err
	}
	return dedupe(ctx, s, KindProjection, req, func(snap records.Snapshot) (Projection, error) {
		periods, err := Project(snap, w, req.InitialCash)
		if err != nil {
			return Projection{}, err
		}
		return Projection{Periods: periods, Metadata: metadataOf(req)}, nil
	})
}

// ComputeBudgetVsActual returns the budget-vs-actual report for the requested
// window. Records are read once and shared by both sides of the comparison.
func (s *Service) ComputeBudgetVsActual(ctx context.Context, req ProjectionRequest) (result BudgetVsActual, err error) {
	started := time.Now()
	defer func() { s.observe(KindBudgetVsActual, started, err) }()

	w, err := s.prepare(req)
	if err != nil {
		return BudgetVsActual{}, err
	}
	return dedupe(ctx, s, KindBudgetVsActual, req, func(snap records.Snapshot) (BudgetVsActual, error) {
		budget, err := Project(snap, w, req.InitialCash)
		if err != nil {
			return BudgetVsActual{}, err
		}
		rows := CompareBudget(budget, AggregateActuals(snap.Actuals), req.InitialCash)
		return BudgetVsActual{Rows: rows, Metadata: metadataOf(req)}, nil
	})
}

// LoanSchedule returns the full annuity plan of one loan.
func (s *Service) LoanSchedule(ctx context.Context, loanID int64) (result LoanSchedule, err error) {
	started := time.Now()
	defer func() { s.observe(KindLoanSchedule, started, err) }()

	loans, err := s.repo.ListLoans(ctx)
	if err != nil {
		return LoanSchedule{}, fmt.Errorf("forecast: list loans: %w", err)
	}
	for _, loan := range loans {
		if loan.ID == loanID {
			return AmortizationSchedule(loan)
		}
	}
	return LoanSchedule{}, fmt.Errorf("%w: %d", ErrLoanNotFound, loanID)
}

// Invalidate drops every cached computation, including results for records
// that have not changed.
func (s *Service) Invalidate(ctx context.Context) error {
	ver, err := s.cache.Bump(ctx)
	if err != nil {
		return fmt.Errorf("forecast: invalidate cache: %w", err)
	}
	s.logger.Info("forecast cache invalidated", slog.Int64("version", ver))
	return nil
}

func (s *Service) prepare(req ProjectionRequest) (Window, error) {
	w, err := NewWindow(req.StartYear, req.Years)
	if err != nil {
		return Window{}, err
	}
	if err := s.validate.Struct(req); err != nil {
		return Window{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if math.IsNaN(req.InitialCash) || math.IsInf(req.InitialCash, 0) {
		return Window{}, fmt.Errorf("%w: initial cash must be finite", httpx.ErrValidation)
	}
	return w, nil
}

func (s *Service) load(ctx context.Context) (records.Snapshot, error) {
	snap, err := records.Load(ctx, s.repo)
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("forecast: load records: %w", err)
	}
	if skipped := SkippedContracts(snap); len(skipped) > 0 {
		s.logger.Debug("contracts without offer skipped", slog.Int("count", len(skipped)), slog.Any("contract_ids", skipped))
	}
	return snap, nil
}

func (s *Service) observe(kind string, started time.Time, err error) {
	if s.recorder != nil {
		s.recorder.ObserveComputation(kind, started, err)
	}
}

// dedupe collapses identical concurrent requests. The shared computation reads
// the records once and serves the result through the cache, keyed by a digest
// of those records. It is detached from the caller that started it so other
// waiters are not failed by that caller's cancellation.
func dedupe[T any](ctx context.Context, s *Service, kind string, req ProjectionRequest, compute func(records.Snapshot) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	base := keyProjection(kind, req)
	ch := s.group.DoChan(base, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedComputeTimeout)
		defer cancel()

		snap, err := s.load(shared)
		if err != nil {
			return nil, err
		}
		fingerprint, err := Fingerprint(snap)
		if err != nil {
			s.logger.Warn("forecast records fingerprint", slog.Any("error", err))
			return compute(snap)
		}
		key, err := s.cache.BuildKey(shared, base, fingerprint)
		if err != nil {
			s.logger.Warn("forecast cache key", slog.Any("error", err))
			return compute(snap)
		}
		return FetchJSON(shared, s.cache, key, func(context.Context) (T, error) {
			return compute(snap)
		})
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func metadataOf(req ProjectionRequest) Metadata {
	return Metadata{StartYear: req.StartYear, Years: req.Years}
}
