// Package postgres stores forecast records in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/ekonum/internal/platform/db"
	"github.com/odyssey-erp/ekonum/internal/records"
)

// undefinedTable is the SQLSTATE raised when the schema was never migrated.
const undefinedTable = "42P01"

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store reads and seeds record sets through a pgx pool.
type Store struct {
	reader
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{reader: reader{q: pool}, pool: pool}
}

// LoadSnapshot reads every record set inside one read-only transaction.
func (s *Store) LoadSnapshot(ctx context.Context) (records.Snapshot, error) {
	var snap records.Snapshot
	err := db.WithReadTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		snap, err = records.LoadSequential(ctx, reader{q: tx})
		return err
	})
	if err != nil {
		return records.Snapshot{}, mapError(err)
	}
	return snap, nil
}

// Import replaces every record set with snap in a single transaction.
func (s *Store) Import(ctx context.Context, snap records.Snapshot) error {
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE offers, contracts, payment_events, fixed_costs, assets, loans, actual_entries`); err != nil {
			return err
		}
		for _, table := range importTables(snap) {
			if table.rows.len == 0 {
				continue
			}
			if _, err := tx.CopyFrom(ctx, pgx.Identifier{table.name}, table.columns, pgx.CopyFromSlice(table.rows.len, table.rows.next)); err != nil {
				return fmt.Errorf("copy %s: %w", table.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("records/postgres: import: %w", mapError(err))
	}
	return nil
}

type copyRows struct {
	len  int
	next func(int) ([]any, error)
}

type importTable struct {
	name    string
	columns []string
	rows    copyRows
}

func importTables(snap records.Snapshot) []importTable {
	return []importTable{
		{"offers", []string{"id", "name", "offer_type", "default_price", "variable_cost_rate"}, copyRows{len(snap.Offers), func(i int) ([]any, error) {
			o := snap.Offers[i]
			return []any{o.ID, o.Name, string(o.Type), o.DefaultPrice, o.VariableCostRate}, nil
		}}},
		{"contracts", []string{"id", "client_name", "offer_id", "start_date", "end_date", "recurrence", "total_value", "quantity", "tax_rate"}, copyRows{len(snap.Contracts), func(i int) ([]any, error) {
			c := snap.Contracts[i]
			return []any{c.ID, c.ClientName, c.OfferID, c.StartDate, c.EndDate, string(c.Recurrence), c.TotalValue, c.Quantity, c.TaxRate}, nil
		}}},
		{"payment_events", []string{"id", "contract_id", "label", "due_date", "amount"}, copyRows{len(snap.Payments), func(i int) ([]any, error) {
			p := snap.Payments[i]
			return []any{p.ID, p.ContractID, p.Label, p.DueDate, p.Amount}, nil
		}}},
		{"fixed_costs", []string{"id", "name", "monthly_amount", "start_date", "end_date"}, copyRows{len(snap.Fixed), func(i int) ([]any, error) {
			f := snap.Fixed[i]
			return []any{f.ID, f.Name, f.MonthlyAmount, f.StartDate, f.EndDate}, nil
		}}},
		{"assets", []string{"id", "name", "purchase_date", "purchase_amount", "amortization_months"}, copyRows{len(snap.Assets), func(i int) ([]any, error) {
			a := snap.Assets[i]
			return []any{a.ID, a.Name, a.PurchaseDate, a.PurchaseAmount, a.AmortizationMonths}, nil
		}}},
		{"loans", []string{"id", "name", "principal", "annual_rate", "start_date", "term_months"}, copyRows{len(snap.Loans), func(i int) ([]any, error) {
			l := snap.Loans[i]
			return []any{l.ID, l.Name, l.Principal, l.AnnualRate, l.StartDate, l.TermMonths}, nil
		}}},
		{"actual_entries", []string{"id", "entry_date", "category", "amount"}, copyRows{len(snap.Actuals), func(i int) ([]any, error) {
			e := snap.Actuals[i]
			category, err := e.Category.MarshalText()
			if err != nil {
				return nil, err
			}
			return []any{e.ID, e.EntryDate, string(category), e.Amount}, nil
		}}},
	}
}

// reader implements records.Repository over a pool or a transaction.
type reader struct {
	q queryer
}

func (r reader) ListOffers(ctx context.Context) ([]records.Offer, error) {
	return collect(ctx, r.q, `SELECT id, name, offer_type, default_price, variable_cost_rate FROM offers ORDER BY id`,
		func(row pgx.CollectableRow) (records.Offer, error) {
			var o records.Offer
			var offerType string
			err := row.Scan(&o.ID, &o.Name, &offerType, &o.DefaultPrice, &o.VariableCostRate)
			o.Type = records.OfferType(offerType)
			return o, err
		})
}

func (r reader) ListContracts(ctx context.Context) ([]records.Contract, error) {
	return collect(ctx, r.q, `SELECT id, client_name, offer_id, start_date, end_date, recurrence, total_value, quantity, tax_rate FROM contracts ORDER BY id`,
		func(row pgx.CollectableRow) (records.Contract, error) {
			var c records.Contract
			var recurrence string
			err := row.Scan(&c.ID, &c.ClientName, &c.OfferID, &c.StartDate, &c.EndDate, &recurrence, &c.TotalValue, &c.Quantity, &c.TaxRate)
			c.Recurrence = records.Recurrence(recurrence)
			return c, err
		})
}

func (r reader) ListPaymentEvents(ctx context.Context) ([]records.PaymentEvent, error) {
	return collect(ctx, r.q, `SELECT id, contract_id, label, due_date, amount FROM payment_events ORDER BY due_date, id`,
		func(row pgx.CollectableRow) (records.PaymentEvent, error) {
			var p records.PaymentEvent
			err := row.Scan(&p.ID, &p.ContractID, &p.Label, &p.DueDate, &p.Amount)
			return p, err
		})
}

func (r reader) ListFixedCosts(ctx context.Context) ([]records.FixedCost, error) {
	return collect(ctx, r.q, `SELECT id, name, monthly_amount, start_date, end_date FROM fixed_costs ORDER BY id`,
		func(row pgx.CollectableRow) (records.FixedCost, error) {
			var f records.FixedCost
			err := row.Scan(&f.ID, &f.Name, &f.MonthlyAmount, &f.StartDate, &f.EndDate)
			return f, err
		})
}

func (r reader) ListAssets(ctx context.Context) ([]records.Asset, error) {
	return collect(ctx, r.q, `SELECT id, name, purchase_date, purchase_amount, amortization_months FROM assets ORDER BY id`,
		func(row pgx.CollectableRow) (records.Asset, error) {
			var a records.Asset
			err := row.Scan(&a.ID, &a.Name, &a.PurchaseDate, &a.PurchaseAmount, &a.AmortizationMonths)
			return a, err
		})
}

func (r reader) ListLoans(ctx context.Context) ([]records.Loan, error) {
	return collect(ctx, r.q, `SELECT id, name, principal, annual_rate, start_date, term_months FROM loans ORDER BY id`,
		func(row pgx.CollectableRow) (records.Loan, error) {
			var l records.Loan
			err := row.Scan(&l.ID, &l.Name, &l.Principal, &l.AnnualRate, &l.StartDate, &l.TermMonths)
			return l, err
		})
}

func (r reader) ListActuals(ctx context.Context) ([]records.ActualEntry, error) {
	return collect(ctx, r.q, `SELECT id, entry_date, category, amount FROM actual_entries ORDER BY entry_date, id`,
		func(row pgx.CollectableRow) (records.ActualEntry, error) {
			var e records.ActualEntry
			var category string
			if err := row.Scan(&e.ID, &e.EntryDate, &category, &e.Amount); err != nil {
				return e, err
			}
			parsed, err := records.ParseCategory(category)
			if err != nil {
				return e, fmt.Errorf("actual entry %d: %w", e.ID, err)
			}
			e.Category = parsed
			return e, nil
		})
}

func collect[T any](ctx context.Context, q queryer, sql string, scan pgx.RowToFunc[T]) ([]T, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("records/postgres: query: %w", mapError(err))
	}
	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, fmt.Errorf("records/postgres: scan: %w", mapError(err))
	}
	return out, nil
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%w: %s", records.ErrNotMigrated, pgErr.Message)
	}
	return err
}
