package forecast

// ledger accumulates full-precision amounts per window slot. Slots are
// pre-populated with zeros and ordered chronologically; writers only add.
type ledger struct {
	revenue      []float64
	variable     []float64
	fixed        []float64
	amortization []float64
	interest     []float64
	principal    []float64
	cashIn       []float64
	cashOut      []float64
}

func newLedger(n int) *ledger {
	return &ledger{
		revenue:      make([]float64, n),
		variable:     make([]float64, n),
		fixed:        make([]float64, n),
		amortization: make([]float64, n),
		interest:     make([]float64, n),
		principal:    make([]float64, n),
		cashIn:       make([]float64, n),
		cashOut:      make([]float64, n),
	}
}

// statements folds the ledger into rounded monthly statements. Cumulative
// cash depends on the previous month, so this loop stays sequential.
func (l *ledger) statements(w Window, initialCash float64) []Statement {
	out := make([]Statement, w.Len())
	cash := initialCash
	for i, m := range w.months {
		ebt := l.revenue[i] - l.variable[i] - l.fixed[i] - l.amortization[i] - l.interest[i]
		cash += l.cashIn[i] - l.cashOut[i]
		out[i] = Statement{
			Month:         m,
			Revenue:       round2(l.revenue[i]),
			VariableCosts: round2(l.variable[i]),
			FixedCosts:    round2(l.fixed[i]),
			Amortization:  round2(l.amortization[i]),
			LoanInterest:  round2(l.interest[i]),
			LoanPrincipal: round2(l.principal[i]),
			EBT:           round2(ebt),
			CashIn:        round2(l.cashIn[i]),
			CashOut:       round2(l.cashOut[i]),
			Cash:          round2(cash),
		}
	}
	return out
}
