// Package sqlite stores forecast records in a local SQLite file for offline use.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/odyssey-erp/ekonum/internal/records"
)

// Store reads and seeds record sets in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates the database file when missing, applies migrations and returns a Store.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("records/sqlite: create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("records/sqlite: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("records/sqlite: ping: %w", err)
	}
	if err := Migrate(path); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Import replaces every record set with snap in a single transaction.
func (s *Store) Import(ctx context.Context, snap records.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("records/sqlite: begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"offers", "contracts", "payment_events", "fixed_costs", "assets", "loans", "actual_entries"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("records/sqlite: clear %s: %w", table, mapError(err))
		}
	}
	for _, o := range snap.Offers {
		if _, err := tx.ExecContext(ctx, `INSERT INTO offers (id, name, offer_type, default_price, variable_cost_rate) VALUES (?, ?, ?, ?, ?)`,
			o.ID, o.Name, string(o.Type), o.DefaultPrice, o.VariableCostRate); err != nil {
			return fmt.Errorf("records/sqlite: insert offer %d: %w", o.ID, err)
		}
	}
	for _, c := range snap.Contracts {
		if _, err := tx.ExecContext(ctx, `INSERT INTO contracts (id, client_name, offer_id, start_date, end_date, recurrence, total_value, quantity, tax_rate) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.ClientName, c.OfferID, formatDate(c.StartDate), formatOptionalDate(c.EndDate), string(c.Recurrence), c.TotalValue, c.Quantity, c.TaxRate); err != nil {
			return fmt.Errorf("records/sqlite: insert contract %d: %w", c.ID, err)
		}
	}
	for _, p := range snap.Payments {
		if _, err := tx.ExecContext(ctx, `INSERT INTO payment_events (id, contract_id, label, due_date, amount) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.ContractID, p.Label, formatDate(p.DueDate), p.Amount); err != nil {
			return fmt.Errorf("records/sqlite: insert payment event %d: %w", p.ID, err)
		}
	}
	for _, f := range snap.Fixed {
		if _, err := tx.ExecContext(ctx, `INSERT INTO fixed_costs (id, name, monthly_amount, start_date, end_date) VALUES (?, ?, ?, ?, ?)`,
			f.ID, f.Name, f.MonthlyAmount, formatDate(f.StartDate), formatOptionalDate(f.EndDate)); err != nil {
			return fmt.Errorf("records/sqlite: insert fixed cost %d: %w", f.ID, err)
		}
	}
	for _, a := range snap.Assets {
		if _, err := tx.ExecContext(ctx, `INSERT INTO assets (id, name, purchase_date, purchase_amount, amortization_months) VALUES (?, ?, ?, ?, ?)`,
			a.ID, a.Name, formatDate(a.PurchaseDate), a.PurchaseAmount, a.AmortizationMonths); err != nil {
			return fmt.Errorf("records/sqlite: insert asset %d: %w", a.ID, err)
		}
	}
	for _, l := range snap.Loans {
		if _, err := tx.ExecContext(ctx, `INSERT INTO loans (id, name, principal, annual_rate, start_date, term_months) VALUES (?, ?, ?, ?, ?, ?)`,
			l.ID, l.Name, l.Principal, l.AnnualRate, formatDate(l.StartDate), l.TermMonths); err != nil {
			return fmt.Errorf("records/sqlite: insert loan %d: %w", l.ID, err)
		}
	}
	for _, e := range snap.Actuals {
		category, err := e.Category.MarshalText()
		if err != nil {
			return fmt.Errorf("records/sqlite: actual entry %d: %w", e.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO actual_entries (id, entry_date, category, amount) VALUES (?, ?, ?, ?)`,
			e.ID, formatDate(e.EntryDate), string(category), e.Amount); err != nil {
			return fmt.Errorf("records/sqlite: insert actual entry %d: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("records/sqlite: commit import: %w", err)
	}
	return nil
}

func (s *Store) ListOffers(ctx context.Context) ([]records.Offer, error) {
	return collect(ctx, s.db, `SELECT id, name, offer_type, default_price, variable_cost_rate FROM offers ORDER BY id`,
		func(rows *sql.Rows) (records.Offer, error) {
			var o records.Offer
			var offerType string
			var rate sql.NullFloat64
			if err := rows.Scan(&o.ID, &o.Name, &offerType, &o.DefaultPrice, &rate); err != nil {
				return o, err
			}
			o.Type = records.OfferType(offerType)
			if rate.Valid {
				o.VariableCostRate = &rate.Float64
			}
			return o, nil
		})
}

func (s *Store) ListContracts(ctx context.Context) ([]records.Contract, error) {
	return collect(ctx, s.db, `SELECT id, client_name, offer_id, start_date, end_date, recurrence, total_value, quantity, tax_rate FROM contracts ORDER BY id`,
		func(rows *sql.Rows) (records.Contract, error) {
			var c records.Contract
			var start, recurrence string
			var end sql.NullString
			if err := rows.Scan(&c.ID, &c.ClientName, &c.OfferID, &start, &end, &recurrence, &c.TotalValue, &c.Quantity, &c.TaxRate); err != nil {
				return c, err
			}
			c.Recurrence = records.Recurrence(recurrence)
			var err error
			if c.StartDate, err = records.ParseDate(start); err != nil {
				return c, err
			}
			c.EndDate, err = parseOptionalDate(end)
			return c, err
		})
}

func (s *Store) ListPaymentEvents(ctx context.Context) ([]records.PaymentEvent, error) {
	return collect(ctx, s.db, `SELECT id, contract_id, label, due_date, amount FROM payment_events ORDER BY due_date, id`,
		func(rows *sql.Rows) (records.PaymentEvent, error) {
			var p records.PaymentEvent
			var due string
			if err := rows.Scan(&p.ID, &p.ContractID, &p.Label, &due, &p.Amount); err != nil {
				return p, err
			}
			var err error
			p.DueDate, err = records.ParseDate(due)
			return p, err
		})
}

func (s *Store) ListFixedCosts(ctx context.Context) ([]records.FixedCost, error) {
	return collect(ctx, s.db, `SELECT id, name, monthly_amount, start_date, end_date FROM fixed_costs ORDER BY id`,
		func(rows *sql.Rows) (records.FixedCost, error) {
			var f records.FixedCost
			var start string
			var end sql.NullString
			if err := rows.Scan(&f.ID, &f.Name, &f.MonthlyAmount, &start, &end); err != nil {
				return f, err
			}
			var err error
			if f.StartDate, err = records.ParseDate(start); err != nil {
				return f, err
			}
			f.EndDate, err = parseOptionalDate(end)
			return f, err
		})
}

func (s *Store) ListAssets(ctx context.Context) ([]records.Asset, error) {
	return collect(ctx, s.db, `SELECT id, name, purchase_date, purchase_amount, amortization_months FROM assets ORDER BY id`,
		func(rows *sql.Rows) (records.Asset, error) {
			var a records.Asset
			var purchased string
			if err := rows.Scan(&a.ID, &a.Name, &purchased, &a.PurchaseAmount, &a.AmortizationMonths); err != nil {
				return a, err
			}
			var err error
			a.PurchaseDate, err = records.ParseDate(purchased)
			return a, err
		})
}

func (s *Store) ListLoans(ctx context.Context) ([]records.Loan, error) {
	return collect(ctx, s.db, `SELECT id, name, principal, annual_rate, start_date, term_months FROM loans ORDER BY id`,
		func(rows *sql.Rows) (records.Loan, error) {
			var l records.Loan
			var start string
			if err := rows.Scan(&l.ID, &l.Name, &l.Principal, &l.AnnualRate, &start, &l.TermMonths); err != nil {
				return l, err
			}
			var err error
			l.StartDate, err = records.ParseDate(start)
			return l, err
		})
}

func (s *Store) ListActuals(ctx context.Context) ([]records.ActualEntry, error) {
	return collect(ctx, s.db, `SELECT id, entry_date, category, amount FROM actual_entries ORDER BY entry_date, id`,
		func(rows *sql.Rows) (records.ActualEntry, error) {
			var e records.ActualEntry
			var entered, category string
			if err := rows.Scan(&e.ID, &entered, &category, &e.Amount); err != nil {
				return e, err
			}
			var err error
			if e.EntryDate, err = records.ParseDate(entered); err != nil {
				return e, err
			}
			if e.Category, err = records.ParseCategory(category); err != nil {
				return e, fmt.Errorf("actual entry %d: %w", e.ID, err)
			}
			return e, nil
		})
}

func collect[T any](ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("records/sqlite: query: %w", mapError(err))
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("records/sqlite: scan: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records/sqlite: rows: %w", mapError(err))
	}
	return out, nil
}

func mapError(err error) error {
	if err != nil && strings.Contains(err.Error(), "no such table") {
		return errors.Join(records.ErrNotMigrated, err)
	}
	return err
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func formatOptionalDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}

func parseOptionalDate(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := records.ParseDate(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
