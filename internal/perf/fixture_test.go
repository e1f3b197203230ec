package perf

import (
	"time"

	"github.com/odyssey-erp/ekonum/internal/records"
)

// largeSnapshot builds a record set sized like a busy ten-year book.
func largeSnapshot() records.Snapshot {
	start := time.Date(2020, time.October, 1, 0, 0, 0, 0, time.UTC)
	var snap records.Snapshot
	kinds := []records.OfferType{records.OfferOneOff, records.OfferRecurring, records.OfferLicense, records.OfferHardware}
	recurrences := []records.Recurrence{records.RecurrenceOneTime, records.RecurrenceMonthly, records.RecurrenceAnnual}
	for i := 0; i < 40; i++ {
		snap.Offers = append(snap.Offers, records.Offer{ID: int64(i + 1), Type: kinds[i%len(kinds)], DefaultPrice: 100})
	}
	for i := 0; i < 400; i++ {
		c := records.Contract{
			ID:         int64(i + 1),
			OfferID:    int64(i%40 + 1),
			StartDate:  start.AddDate(0, i%96, i%27),
			Recurrence: recurrences[i%len(recurrences)],
			TotalValue: float64(100 + i),
			Quantity:   1 + i%3,
			TaxRate:    0.2,
		}
		snap.Contracts = append(snap.Contracts, c)
		if i%5 == 0 {
			snap.Payments = append(snap.Payments, records.PaymentEvent{ID: int64(i + 1), ContractID: c.ID, DueDate: c.StartDate.AddDate(0, 1, 0), Amount: 50})
		}
	}
	for i := 0; i < 30; i++ {
		snap.Fixed = append(snap.Fixed, records.FixedCost{ID: int64(i + 1), MonthlyAmount: 1000, StartDate: start.AddDate(0, i, 0)})
		snap.Assets = append(snap.Assets, records.Asset{ID: int64(i + 1), PurchaseDate: start.AddDate(0, i*3, 0), PurchaseAmount: 3600, AmortizationMonths: 36})
		snap.Loans = append(snap.Loans, records.Loan{ID: int64(i + 1), Principal: 10000, AnnualRate: 0.05, StartDate: start.AddDate(0, i*2, 0), TermMonths: 60})
	}
	for i := 0; i < 3000; i++ {
		snap.Actuals = append(snap.Actuals, records.ActualEntry{
			ID:        int64(i + 1),
			EntryDate: start.AddDate(0, 0, i),
			Category:  records.Category(i % records.CategoryCount),
			Amount:    float64(i % 500),
		})
	}
	return snap
}
