package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/odyssey-erp/ekonum/internal/platform/httpx"
	"github.com/odyssey-erp/ekonum/internal/records"
)

// Installment is one month of an annuity schedule.
type Installment struct {
	Month     time.Time `json:"month"`
	Payment   float64   `json:"payment"`
	Interest  float64   `json:"interest"`
	Principal float64   `json:"principal"`
	Balance   float64   `json:"balance"`
}

// annuity holds the validated parameters of a level-payment loan.
type annuity struct {
	monthlyRate float64
	payment     float64
}

// newAnnuity validates the loan and derives its level payment:
// payment = P*r / (1 - (1+r)^-n).
func newAnnuity(loan records.Loan) (annuity, error) {
	if err := records.Validate(loan); err != nil {
		return annuity{}, &ScheduleError{Kind: "loan", ID: loan.ID, Reason: err}
	}
	if err := checkFinite("Principal", loan.Principal); err != nil {
		return annuity{}, &ScheduleError{Kind: "loan", ID: loan.ID, Reason: err}
	}
	r := loan.AnnualRate / 12
	denom := 1 - math.Pow(1+r, -float64(loan.TermMonths))
	payment := loan.Principal * r / denom
	if denom == 0 || math.IsNaN(payment) || math.IsInf(payment, 0) {
		reason := fmt.Errorf("%w: annual rate %v makes the annuity undefined", httpx.ErrValidation, loan.AnnualRate)
		return annuity{}, &ScheduleError{Kind: "loan", ID: loan.ID, Reason: reason}
	}
	return annuity{monthlyRate: r, payment: payment}, nil
}

// walk iterates the schedule from the first month, stopping early when fn returns false.
func (a annuity) walk(loan records.Loan, fn func(month time.Time, interest, principal, balance float64) bool) {
	balance := loan.Principal
	start := records.MonthStart(loan.StartDate)
	for k := 0; k < loan.TermMonths; k++ {
		interest := balance * a.monthlyRate
		principal := a.payment - interest
		balance -= principal
		if !fn(start.AddDate(0, k, 0), interest, principal, balance) {
			return
		}
	}
}

// scheduleLoan books interest, principal and the level payment for every
// in-window month. The balance runs from the loan start, so months before the
// window still amortise principal.
func scheduleLoan(l *ledger, w Window, loan records.Loan) error {
	a, err := newAnnuity(loan)
	if err != nil {
		return err
	}
	last := w.Last()
	a.walk(loan, func(month time.Time, interest, principal, _ float64) bool {
		if month.After(last) {
			return false
		}
		i, ok := w.Index(month)
		if !ok {
			return true
		}
		l.interest[i] += interest
		l.principal[i] += principal
		l.cashOut[i] += a.payment
		return true
	})
	return nil
}

// maxScheduleMonths caps the installments materialised by AmortizationSchedule.
const maxScheduleMonths = 1200

// AmortizationSchedule returns the full annuity plan of a loan, rounded for display.
func AmortizationSchedule(loan records.Loan) (LoanSchedule, error) {
	if loan.TermMonths > maxScheduleMonths {
		reason := fmt.Errorf("%w: term of %d months exceeds %d", httpx.ErrValidation, loan.TermMonths, maxScheduleMonths)
		return LoanSchedule{}, &ScheduleError{Kind: "loan", ID: loan.ID, Reason: reason}
	}
	a, err := newAnnuity(loan)
	if err != nil {
		return LoanSchedule{}, err
	}
	out := LoanSchedule{
		LoanID:      loan.ID,
		Name:        loan.Name,
		Payment:     round2(a.payment),
		MonthlyRate: a.monthlyRate,
		Rows:        make([]Installment, 0, loan.TermMonths),
	}
	a.walk(loan, func(month time.Time, interest, principal, balance float64) bool {
		out.Rows = append(out.Rows, Installment{
			Month:     month,
			Payment:   round2(a.payment),
			Interest:  round2(interest),
			Principal: round2(principal),
			Balance:   round2(balance),
		})
		return true
	})
	return out, nil
}
