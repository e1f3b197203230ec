package forecast

import "github.com/odyssey-erp/ekonum/internal/records"

// CompareBudget joins the budget with actuals month by month. The budget's
// months drive the report; missing actuals count as zero. Actual cash runs
// from initialCash like the budget's.
func CompareBudget(budget []Statement, actuals Actuals, initialCash float64) []VarianceRow {
	rows := make([]VarianceRow, 0, len(budget))
	actualCash := initialCash
	for _, b := range budget {
		bucket := actuals.For(b.Month)
		revenue := bucket.Get(records.CategoryRevenue)
		variable := bucket.Get(records.CategoryVariableCosts)
		fixed := bucket.Get(records.CategoryFixedCosts)
		amortization := bucket.Get(records.CategoryAmortization)
		interest := bucket.Get(records.CategoryLoanInterest)
		principal := bucket.Get(records.CategoryLoanPrincipal)

		ebt := revenue - variable - fixed - amortization - interest
		actualCash += ebt - principal

		rows = append(rows, VarianceRow{
			Month:         b.Month,
			Revenue:       newLine(b.Revenue, revenue),
			VariableCosts: newLine(b.VariableCosts, variable),
			FixedCosts:    newLine(b.FixedCosts, fixed),
			Amortization:  newLine(b.Amortization, amortization),
			LoanInterest:  newLine(b.LoanInterest, interest),
			LoanPrincipal: newLine(b.LoanPrincipal, principal),
			EBT:           newLine(b.EBT, ebt),
			Cash:          newLine(b.Cash, actualCash),
		})
	}
	return rows
}
