package forecast

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ekonum/internal/platform/httpx"
	"github.com/odyssey-erp/ekonum/internal/records"
	"github.com/odyssey-erp/ekonum/internal/records/memory"
)

type countingRepo struct {
	*memory.Store
	offers atomic.Int32
}

func (c *countingRepo) ListOffers(ctx context.Context) ([]records.Offer, error) {
	c.offers.Add(1)
	return c.Store.ListOffers(ctx)
}

type recorderStub struct {
	kinds []string
	errs  []error
}

func (r *recorderStub) ObserveComputation(kind string, _ time.Time, err error) {
	r.kinds = append(r.kinds, kind)
	r.errs = append(r.errs, err)
}

func fixtureSnapshot() records.Snapshot {
	return records.Snapshot{
		Offers: []records.Offer{{ID: 1, Type: records.OfferRecurring}},
		Contracts: []records.Contract{{
			ID: 1, OfferID: 1, StartDate: date(2024, time.October, 1),
			Recurrence: records.RecurrenceMonthly, TotalValue: 100, Quantity: 2, TaxRate: 0.2,
		}},
		Loans: []records.Loan{{ID: 5, Name: "van", Principal: 12000, AnnualRate: 0.12, StartDate: date(2024, time.October, 1), TermMonths: 12}},
		Actuals: []records.ActualEntry{
			{ID: 1, EntryDate: date(2024, time.October, 3), Category: records.CategoryRevenue, Amount: 180},
		},
	}
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestServiceComputeProjection(t *testing.T) {
	repo := &countingRepo{Store: memory.New(fixtureSnapshot())}
	rec := &recorderStub{}
	svc := NewService(repo, nil, nil).WithRecorder(rec)

	res, err := svc.ComputeProjection(context.Background(), ProjectionRequest{StartYear: 2024, Years: 1, InitialCash: 100})
	require.NoError(t, err)
	require.Len(t, res.Periods, 12)
	assert.Equal(t, Metadata{StartYear: 2024, Years: 1}, res.Metadata)
	assert.Equal(t, 200.0, res.Periods[0].Revenue)
	assert.Equal(t, 240.0, res.Periods[0].CashIn)
	assert.Equal(t, 1066.19, res.Periods[0].CashOut)
	assert.Equal(t, []string{KindProjection}, rec.kinds)
	assert.NoError(t, rec.errs[0])
}

func TestServiceRejectsInvalidWindowBeforeReading(t *testing.T) {
	repo := &countingRepo{Store: memory.New(fixtureSnapshot())}
	rec := &recorderStub{}
	svc := NewService(repo, nil, nil).WithRecorder(rec)

	for _, years := range []int{0, 11} {
		_, err := svc.ComputeProjection(context.Background(), ProjectionRequest{StartYear: 2024, Years: years})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidWindow))
	}
	assert.Zero(t, repo.offers.Load())
	assert.Len(t, rec.errs, 2)
	assert.Error(t, rec.errs[0])
}

func TestServiceRejectsNonFiniteInitialCash(t *testing.T) {
	svc := NewService(memory.New(records.Snapshot{}), nil, nil)
	_, err := svc.ComputeBudgetVsActual(context.Background(), ProjectionRequest{StartYear: 2024, Years: 1, InitialCash: math.Inf(1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestServiceBudgetVsActualReadsOnce(t *testing.T) {
	repo := &countingRepo{Store: memory.New(fixtureSnapshot())}
	svc := NewService(repo, nil, nil)

	res, err := svc.ComputeBudgetVsActual(context.Background(), ProjectionRequest{StartYear: 2024, Years: 1})
	require.NoError(t, err)
	require.Len(t, res.Rows, 12)
	assert.Equal(t, int32(1), repo.offers.Load())
	assert.Equal(t, Line{Budget: 200, Actual: 180, Variance: -20}, res.Rows[0].Revenue)
	assert.Equal(t, Line{Budget: 200, Actual: 0, Variance: -200}, res.Rows[1].Revenue)
}

func TestServicePropagatesStoreErrors(t *testing.T) {
	store := memory.New(fixtureSnapshot())
	store.FailWith(httpx.ErrUnavailable)
	svc := NewService(store, nil, nil)

	_, err := svc.ComputeProjection(context.Background(), ProjectionRequest{StartYear: 2024, Years: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnavailable))
}

func TestServiceScheduleErrorSurfaces(t *testing.T) {
	snap := fixtureSnapshot()
	snap.Assets = []records.Asset{{ID: 9, PurchaseDate: date(2024, time.October, 1), PurchaseAmount: 10}}
	svc := NewService(memory.New(snap), nil, nil)

	_, err := svc.ComputeProjection(context.Background(), ProjectionRequest{StartYear: 2024, Years: 1})
	require.Error(t, err)
	var schedErr *ScheduleError
	require.True(t, errors.As(err, &schedErr))
	assert.Equal(t, "asset", schedErr.Kind)
	assert.Equal(t, int64(9), schedErr.ID)
}

func TestServiceCacheFollowsRecordChanges(t *testing.T) {
	cache, mr := newTestCache(t)
	store := memory.New(fixtureSnapshot())
	svc := NewService(store, cache, nil)
	ctx := context.Background()
	req := ProjectionRequest{StartYear: 2024, Years: 1}

	first, err := svc.ComputeProjection(ctx, req)
	require.NoError(t, err)
	cached := mr.Keys()
	require.Len(t, cached, 2)

	second, err := svc.ComputeProjection(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, cached, mr.Keys())

	snap := fixtureSnapshot()
	snap.Contracts[0].TotalValue = 1000
	store.Replace(snap)

	changed, err := svc.ComputeProjection(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, changed.Periods[0].Revenue)
	assert.Len(t, mr.Keys(), 3)

	require.NoError(t, svc.Invalidate(ctx))
	ver, err := mr.Get(cacheVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "2", ver)

	again, err := svc.ComputeProjection(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, changed, again)
	assert.Len(t, mr.Keys(), 4)
}

func TestServiceCacheServesStoredResult(t *testing.T) {
	cache, mr := newTestCache(t)
	svc := NewService(memory.New(fixtureSnapshot()), cache, nil)
	ctx := context.Background()
	req := ProjectionRequest{StartYear: 2024, Years: 1}

	_, err := svc.ComputeProjection(ctx, req)
	require.NoError(t, err)

	fingerprint, err := Fingerprint(fixtureSnapshot())
	require.NoError(t, err)
	key, err := cache.BuildKey(ctx, keyProjection(KindProjection, req), fingerprint)
	require.NoError(t, err)
	require.True(t, mr.Exists(key))
	require.NoError(t, mr.Set(key, `{"periods":[{"revenue":7}],"metadata":{"start_year":2024,"years":1}}`))

	res, err := svc.ComputeProjection(ctx, req)
	require.NoError(t, err)
	require.Len(t, res.Periods, 1)
	assert.Equal(t, 7.0, res.Periods[0].Revenue)
}

func TestFingerprintTracksRecords(t *testing.T) {
	a, err := Fingerprint(fixtureSnapshot())
	require.NoError(t, err)
	b, err := Fingerprint(fixtureSnapshot())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	snap := fixtureSnapshot()
	snap.Actuals[0].Amount = 181
	c, err := Fingerprint(snap)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

type blockingRepo struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingRepo) ListOffers(ctx context.Context) ([]records.Offer, error) {
	if b.calls.Add(1) == 1 {
		close(b.entered)
	}
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.Store.ListOffers(ctx)
}

func TestServiceSharedComputationOutlivesCancelledCaller(t *testing.T) {
	repo := &blockingRepo{Store: memory.New(fixtureSnapshot()), entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(repo, nil, nil)
	req := ProjectionRequest{StartYear: 2024, Years: 1}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.ComputeProjection(firstCtx, req)
		firstErr <- err
	}()
	<-repo.entered

	type outcome struct {
		res Projection
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := svc.ComputeProjection(context.Background(), req)
		second <- outcome{res, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(repo.release)
	got := <-second
	require.NoError(t, got.err)
	require.Len(t, got.res.Periods, 12)
	assert.Equal(t, 200.0, got.res.Periods[0].Revenue)
}

func TestServiceServesUncachedWhenRedisDown(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()
	repo := &countingRepo{Store: memory.New(fixtureSnapshot())}
	svc := NewService(repo, cache, nil)

	res, err := svc.ComputeProjection(context.Background(), ProjectionRequest{StartYear: 2024, Years: 1})
	require.NoError(t, err)
	assert.Len(t, res.Periods, 12)
}

func TestServiceLoanSchedule(t *testing.T) {
	svc := NewService(memory.New(fixtureSnapshot()), nil, nil)

	schedule, err := svc.LoanSchedule(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "van", schedule.Name)
	assert.Len(t, schedule.Rows, 12)

	_, err = svc.LoanSchedule(context.Background(), 77)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoanNotFound))
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestServiceRespectsCancelledContext(t *testing.T) {
	svc := NewService(memory.New(fixtureSnapshot()), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ComputeProjection(ctx, ProjectionRequest{StartYear: 2024, Years: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
