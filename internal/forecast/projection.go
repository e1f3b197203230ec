package forecast

import (
	"github.com/odyssey-erp/ekonum/internal/records"
)

// Project builds the monthly budget statement for the window from a record
// snapshot. Contracts whose offer is unknown are skipped; degenerate assets or
// loans abort the projection with a *ScheduleError.
func Project(snap records.Snapshot, w Window, initialCash float64) ([]Statement, error) {
	l := newLedger(w.Len())

	offers := snap.OfferIndex()
	payments := snap.PaymentsByContract()
	for _, contract := range snap.Contracts {
		offer, ok := offers[contract.OfferID]
		if !ok {
			continue
		}
		plan := ResolvePaymentPlan(contract, payments[contract.ID], w)
		attributeContract(l, w, contract, offer, plan)
	}

	for _, cost := range snap.Fixed {
		spreadFixedCost(l, w, cost)
	}
	for _, asset := range snap.Assets {
		if err := spreadAsset(l, w, asset); err != nil {
			return nil, err
		}
	}
	for _, loan := range snap.Loans {
		if err := scheduleLoan(l, w, loan); err != nil {
			return nil, err
		}
	}

	return l.statements(w, initialCash), nil
}

// SkippedContracts lists contracts excluded because their offer does not resolve.
func SkippedContracts(snap records.Snapshot) []int64 {
	offers := snap.OfferIndex()
	var skipped []int64
	for _, contract := range snap.Contracts {
		if _, ok := offers[contract.OfferID]; !ok {
			skipped = append(skipped, contract.ID)
		}
	}
	return skipped
}
