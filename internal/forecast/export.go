package forecast

const monthLayout = "2006-01"

// ExportStatements formats the projection into CSV-ready rows.
func ExportStatements(periods []Statement) [][]string {
	out := make([][]string, 0, len(periods)+1)
	out = append(out, []string{"Month", "Revenue", "Variable Costs", "Fixed Costs", "Amortization", "Loan Interest", "Loan Principal", "EBT", "Cash In", "Cash Out", "Cash"})
	for _, p := range periods {
		out = append(out, []string{
			p.Month.Format(monthLayout),
			formatAmount(p.Revenue),
			formatAmount(p.VariableCosts),
			formatAmount(p.FixedCosts),
			formatAmount(p.Amortization),
			formatAmount(p.LoanInterest),
			formatAmount(p.LoanPrincipal),
			formatAmount(p.EBT),
			formatAmount(p.CashIn),
			formatAmount(p.CashOut),
			formatAmount(p.Cash),
		})
	}
	return out
}

// ExportVariance formats the budget-vs-actual report into CSV-ready rows,
// three columns per line item.
func ExportVariance(rows []VarianceRow) [][]string {
	items := []string{"Revenue", "Variable Costs", "Fixed Costs", "Amortization", "Loan Interest", "Loan Principal", "EBT", "Cash"}
	header := []string{"Month"}
	for _, item := range items {
		header = append(header, item+" Budget", item+" Actual", item+" Variance")
	}
	out := make([][]string, 0, len(rows)+1)
	out = append(out, header)
	for _, row := range rows {
		record := []string{row.Month.Format(monthLayout)}
		for _, line := range row.Lines() {
			record = append(record, formatAmount(line.Budget), formatAmount(line.Actual), formatAmount(line.Variance))
		}
		out = append(out, record)
	}
	return out
}

// Lines returns the row's line items in report order.
func (r VarianceRow) Lines() [8]Line {
	return [8]Line{r.Revenue, r.VariableCosts, r.FixedCosts, r.Amortization, r.LoanInterest, r.LoanPrincipal, r.EBT, r.Cash}
}
