package forecast

import (
	"time"

	"github.com/odyssey-erp/ekonum/internal/records"
)

// Bucket sums actual amounts per category for one month.
type Bucket [records.CategoryCount]float64

// Get returns the amount booked for c.
func (b Bucket) Get(c records.Category) float64 {
	if !c.Valid() {
		return 0
	}
	return b[c]
}

// Actuals maps month starts to their category buckets.
type Actuals map[time.Time]Bucket

// For returns the bucket of the month containing t, zero when nothing was recorded.
func (a Actuals) For(t time.Time) Bucket {
	return a[records.MonthStart(t)]
}

// AggregateActuals groups entries by month and category. Entries carrying a
// category outside the taxonomy are ignored; stores reject them on read.
func AggregateActuals(entries []records.ActualEntry) Actuals {
	out := make(Actuals)
	for _, entry := range entries {
		if !entry.Category.Valid() {
			continue
		}
		m := records.MonthStart(entry.EntryDate)
		bucket := out[m]
		bucket[entry.Category] += entry.Amount
		out[m] = bucket
	}
	return out
}
