package forecast

import (
	"time"

	"github.com/odyssey-erp/ekonum/internal/records"
)

// Obligation is a gross amount recognised in a month.
type Obligation struct {
	Month  time.Time
	Amount float64
}

// ResolvePaymentPlan returns the contract's obligations. In-window explicit
// events replace the recurrence plan entirely, even when they cover fewer
// months than the recurrence would.
func ResolvePaymentPlan(contract records.Contract, events []records.PaymentEvent, w Window) []Obligation {
	if explicit := explicitPlan(contract, events, w); len(explicit) > 0 {
		return explicit
	}
	return syntheticPlan(contract, w)
}

func explicitPlan(contract records.Contract, events []records.PaymentEvent, w Window) []Obligation {
	if contract.ID == 0 {
		return nil
	}
	var plan []Obligation
	for _, evt := range events {
		if evt.ContractID != contract.ID {
			continue
		}
		due := records.MonthStart(evt.DueDate)
		if !w.Contains(due) {
			continue
		}
		plan = append(plan, Obligation{Month: due, Amount: evt.Amount})
	}
	return plan
}

func syntheticPlan(contract records.Contract, w Window) []Obligation {
	amount := contract.TotalValue * float64(contract.Quantity)
	switch contract.Recurrence {
	case records.RecurrenceOneTime:
		// The start month may lie outside the window; the aggregator drops it.
		return []Obligation{{Month: records.MonthStart(contract.StartDate), Amount: amount}}
	case records.RecurrenceMonthly:
		var plan []Obligation
		for _, m := range w.months {
			if withinBounds(m, contract.StartDate, contract.EndDate) {
				plan = append(plan, Obligation{Month: m, Amount: amount})
			}
		}
		return plan
	case records.RecurrenceAnnual:
		var plan []Obligation
		for _, m := range w.months {
			if m.Month() == contract.StartDate.Month() && withinBounds(m, contract.StartDate, contract.EndDate) {
				plan = append(plan, Obligation{Month: m, Amount: amount})
			}
		}
		return plan
	default:
		return nil
	}
}
