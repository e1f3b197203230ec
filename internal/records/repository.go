package records

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Repository exposes bulk reads of every record set the forecast engine consumes.
type Repository interface {
	ListOffers(ctx context.Context) ([]Offer, error)
	ListContracts(ctx context.Context) ([]Contract, error)
	ListPaymentEvents(ctx context.Context) ([]PaymentEvent, error)
	ListFixedCosts(ctx context.Context) ([]FixedCost, error)
	ListAssets(ctx context.Context) ([]Asset, error)
	ListLoans(ctx context.Context) ([]Loan, error)
	ListActuals(ctx context.Context) ([]ActualEntry, error)
}

// SnapshotLoader is implemented by stores able to read every set in one consistent pass.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (Snapshot, error)
}

// Load reads every record set once. Stores implementing SnapshotLoader are
// trusted to provide their own consistency; others are read concurrently.
func Load(ctx context.Context, repo Repository) (Snapshot, error) {
	if loader, ok := repo.(SnapshotLoader); ok {
		return loader.LoadSnapshot(ctx)
	}
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { snap.Offers, err = repo.ListOffers(gctx); return })
	g.Go(func() (err error) { snap.Contracts, err = repo.ListContracts(gctx); return })
	g.Go(func() (err error) { snap.Payments, err = repo.ListPaymentEvents(gctx); return })
	g.Go(func() (err error) { snap.Fixed, err = repo.ListFixedCosts(gctx); return })
	g.Go(func() (err error) { snap.Assets, err = repo.ListAssets(gctx); return })
	g.Go(func() (err error) { snap.Loans, err = repo.ListLoans(gctx); return })
	g.Go(func() (err error) { snap.Actuals, err = repo.ListActuals(gctx); return })
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// LoadSequential reads every set through repo one after another. Stores that
// wrap a single transaction use it to implement SnapshotLoader.
func LoadSequential(ctx context.Context, repo Repository) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Offers, err = repo.ListOffers(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Contracts, err = repo.ListContracts(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Payments, err = repo.ListPaymentEvents(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Fixed, err = repo.ListFixedCosts(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Assets, err = repo.ListAssets(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Loans, err = repo.ListLoans(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Actuals, err = repo.ListActuals(ctx); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Importer replaces every stored record set with the contents of a snapshot.
type Importer interface {
	Import(ctx context.Context, snap Snapshot) error
}
