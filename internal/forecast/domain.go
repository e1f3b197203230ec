package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/odyssey-erp/ekonum/internal/platform/httpx"
)

// DefaultLicenseCostRate applies to license offers without an explicit variable cost rate.
const DefaultLicenseCostRate = 0.88

var (
	// ErrInvalidWindow occurs when the requested year count is out of range.
	ErrInvalidWindow = fmt.Errorf("forecast: invalid window: %w", httpx.ErrValidation)
	// ErrLoanNotFound occurs when a schedule is requested for an unknown loan.
	ErrLoanNotFound = fmt.Errorf("forecast: loan: %w", httpx.ErrNotFound)
)

// ScheduleError reports a record that cannot be scheduled.
type ScheduleError struct {
	Kind   string
	ID     int64
	Reason error
}

func (e *ScheduleError) Error() string {
	return fmt.Sprintf("forecast: schedule %s %d: %v", e.Kind, e.ID, e.Reason)
}

// Unwrap exposes the underlying validation failure.
func (e *ScheduleError) Unwrap() error {
	return e.Reason
}

// IsScheduleError reports whether err stems from a degenerate record.
func IsScheduleError(err error) bool {
	var target *ScheduleError
	return errors.As(err, &target)
}

// Statement is one month of the projected P&L and cash position.
type Statement struct {
	Month         time.Time `json:"month"`
	Revenue       float64   `json:"revenue"`
	VariableCosts float64   `json:"variable_costs"`
	FixedCosts    float64   `json:"fixed_costs"`
	Amortization  float64   `json:"amortization"`
	LoanInterest  float64   `json:"loan_interest"`
	LoanPrincipal float64   `json:"loan_principal"`
	EBT           float64   `json:"ebt"`
	CashIn        float64   `json:"cash_in"`
	CashOut       float64   `json:"cash_out"`
	Cash          float64   `json:"cash"`
}

// Line is a budget/actual/variance triple for one line item.
type Line struct {
	Budget   float64 `json:"budget"`
	Actual   float64 `json:"actual"`
	Variance float64 `json:"variance"`
}

func newLine(budget, actual float64) Line {
	actual = round2(actual)
	return Line{Budget: budget, Actual: actual, Variance: round2(actual - budget)}
}

// VarianceRow compares budget and actuals for one month.
type VarianceRow struct {
	Month         time.Time `json:"month"`
	Revenue       Line      `json:"revenue"`
	VariableCosts Line      `json:"variable_costs"`
	FixedCosts    Line      `json:"fixed_costs"`
	Amortization  Line      `json:"amortization"`
	LoanInterest  Line      `json:"loan_interest"`
	LoanPrincipal Line      `json:"loan_principal"`
	EBT           Line      `json:"ebt"`
	Cash          Line      `json:"cash"`
}

// ProjectionRequest selects the fiscal window and opening cash.
type ProjectionRequest struct {
	StartYear   int     `json:"start_year" validate:"gte=1900,lte=9999"`
	Years       int     `json:"years" validate:"min=1,max=10"`
	InitialCash float64 `json:"initial_cash"`
}

// Metadata echoes the requested window.
type Metadata struct {
	StartYear int `json:"start_year"`
	Years     int `json:"years"`
}

// Projection is the budget statement for a window.
type Projection struct {
	Periods  []Statement `json:"periods"`
	Metadata Metadata    `json:"metadata"`
}

// BudgetVsActual is the variance report for a window.
type BudgetVsActual struct {
	Rows     []VarianceRow `json:"rows"`
	Metadata Metadata      `json:"metadata"`
}

// LoanSchedule is the full annuity plan of a loan.
type LoanSchedule struct {
	LoanID      int64         `json:"loan_id"`
	Name        string        `json:"name"`
	Payment     float64       `json:"payment"`
	MonthlyRate float64       `json:"monthly_rate"`
	Rows        []Installment `json:"installments"`
}
