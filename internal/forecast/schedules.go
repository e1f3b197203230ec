package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/odyssey-erp/ekonum/internal/platform/httpx"
	"github.com/odyssey-erp/ekonum/internal/records"
)

// attributeContract books revenue, variable cost and taxed cash inflow for
// every in-window obligation of the contract.
func attributeContract(l *ledger, w Window, contract records.Contract, offer records.Offer, plan []Obligation) {
	rate := variableCostRate(offer)
	for _, ob := range plan {
		i, ok := w.Index(ob.Month)
		if !ok {
			continue
		}
		l.revenue[i] += ob.Amount
		l.variable[i] += ob.Amount * rate
		l.cashIn[i] += ob.Amount * (1 + contract.TaxRate)
	}
}

func variableCostRate(offer records.Offer) float64 {
	if offer.VariableCostRate != nil {
		return *offer.VariableCostRate
	}
	if offer.Type == records.OfferLicense {
		return DefaultLicenseCostRate
	}
	return 0
}

// spreadFixedCost books the monthly amount to P&L and cash for each window
// month inside the cost's validity.
func spreadFixedCost(l *ledger, w Window, cost records.FixedCost) {
	for i, m := range w.months {
		if withinBounds(m, cost.StartDate, cost.EndDate) {
			l.fixed[i] += cost.MonthlyAmount
			l.cashOut[i] += cost.MonthlyAmount
		}
	}
}

// spreadAsset amortises straight-line from the purchase month while the full
// purchase hits cash in the purchase month.
func spreadAsset(l *ledger, w Window, asset records.Asset) error {
	if err := records.Validate(asset); err != nil {
		return &ScheduleError{Kind: "asset", ID: asset.ID, Reason: err}
	}
	if err := checkFinite("PurchaseAmount", asset.PurchaseAmount); err != nil {
		return &ScheduleError{Kind: "asset", ID: asset.ID, Reason: err}
	}
	charge := asset.PurchaseAmount / float64(asset.AmortizationMonths)
	// offset is the window slot of the purchase month, possibly negative.
	offset := monthsBetween(w.First(), records.MonthStart(asset.PurchaseDate))
	from := max(0, -offset)
	to := min(asset.AmortizationMonths, w.Len()-offset)
	for k := from; k < to; k++ {
		i := offset + k
		l.amortization[i] += charge
		if k == 0 {
			l.cashOut[i] += asset.PurchaseAmount
		}
	}
	return nil
}

// monthsBetween counts whole months from a to b; both must be month starts.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not finite", httpx.ErrValidation, field)
	}
	return nil
}
