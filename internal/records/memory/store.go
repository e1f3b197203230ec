// Package memory provides an in-memory record store used for fixtures and tests.
package memory

import (
	"context"
	"sync"

	"github.com/odyssey-erp/ekonum/internal/records"
)

// Store keeps record sets in memory. Reads return copies.
type Store struct {
	mu   sync.RWMutex
	snap records.Snapshot
	err  error
}

// New builds a store seeded with the given snapshot.
func New(snap records.Snapshot) *Store {
	return &Store{snap: snap}
}

// Replace swaps the stored record sets.
func (s *Store) Replace(snap records.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// FailWith makes every subsequent read return err.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func read[T any](s *Store, pick func(records.Snapshot) []T) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	src := pick(s.snap)
	out := make([]T, len(src))
	copy(out, src)
	return out, nil
}

func (s *Store) ListOffers(ctx context.Context) ([]records.Offer, error) {
	return read(s, func(snap records.Snapshot) []records.Offer { return snap.Offers })
}

func (s *Store) ListContracts(ctx context.Context) ([]records.Contract, error) {
	return read(s, func(snap records.Snapshot) []records.Contract { return snap.Contracts })
}

func (s *Store) ListPaymentEvents(ctx context.Context) ([]records.PaymentEvent, error) {
	return read(s, func(snap records.Snapshot) []records.PaymentEvent { return snap.Payments })
}

func (s *Store) ListFixedCosts(ctx context.Context) ([]records.FixedCost, error) {
	return read(s, func(snap records.Snapshot) []records.FixedCost { return snap.Fixed })
}

func (s *Store) ListAssets(ctx context.Context) ([]records.Asset, error) {
	return read(s, func(snap records.Snapshot) []records.Asset { return snap.Assets })
}

func (s *Store) ListLoans(ctx context.Context) ([]records.Loan, error) {
	return read(s, func(snap records.Snapshot) []records.Loan { return snap.Loans })
}

func (s *Store) ListActuals(ctx context.Context) ([]records.ActualEntry, error) {
	return read(s, func(snap records.Snapshot) []records.ActualEntry { return snap.Actuals })
}

// Import implements records.Importer.
func (s *Store) Import(ctx context.Context, snap records.Snapshot) error {
	s.Replace(snap)
	return nil
}
