package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ekonum/internal/records"
)

func TestMapErrorUndefinedTable(t *testing.T) {
	err := mapError(fmt.Errorf("query: %w", &pgconn.PgError{Code: undefinedTable, Message: `relation "loans" does not exist`}))
	assert.True(t, errors.Is(err, records.ErrNotMigrated))

	other := &pgconn.PgError{Code: "23505"}
	assert.Same(t, other, mapError(other))
}

func TestImportTablesMatchColumns(t *testing.T) {
	rate := 0.5
	snap := records.Snapshot{
		Offers:    []records.Offer{{ID: 1, Type: records.OfferLicense, VariableCostRate: &rate}},
		Contracts: []records.Contract{{ID: 1}},
		Payments:  []records.PaymentEvent{{ID: 1}},
		Fixed:     []records.FixedCost{{ID: 1}},
		Assets:    []records.Asset{{ID: 1}},
		Loans:     []records.Loan{{ID: 1}},
		Actuals:   []records.ActualEntry{{ID: 1, Category: records.CategoryLoanInterest}},
	}
	for _, table := range importTables(snap) {
		require.Equal(t, 1, table.rows.len, table.name)
		values, err := table.rows.next(0)
		require.NoError(t, err, table.name)
		assert.Len(t, values, len(table.columns), table.name)
	}
}

func TestImportTablesRejectInvalidCategory(t *testing.T) {
	tables := importTables(records.Snapshot{Actuals: []records.ActualEntry{{ID: 1, Category: records.Category(99)}}})
	actuals := tables[len(tables)-1]
	require.Equal(t, "actual_entries", actuals.name)
	_, err := actuals.rows.next(0)
	assert.True(t, errors.Is(err, records.ErrUnknownCategory))
}
