package forecast

import (
	"fmt"
	"time"

	"github.com/odyssey-erp/ekonum/internal/records"
)

const (
	// FiscalStartMonth opens every fiscal year.
	FiscalStartMonth = time.October
	// MinYears and MaxYears bound the projection window.
	MinYears = 1
	MaxYears = 10
)

// Window is the ordered month sequence of a projection.
type Window struct {
	StartYear int
	Years     int
	months    []time.Time
	index     map[time.Time]int
}

// NewWindow generates years*12 consecutive month starts beginning at
// (startYear, FiscalStartMonth).
func NewWindow(startYear, years int) (Window, error) {
	if years < MinYears || years > MaxYears {
		return Window{}, fmt.Errorf("%w: years must be between %d and %d, got %d", ErrInvalidWindow, MinYears, MaxYears, years)
	}
	n := years * 12
	w := Window{
		StartYear: startYear,
		Years:     years,
		months:    make([]time.Time, n),
		index:     make(map[time.Time]int, n),
	}
	start := time.Date(startYear, FiscalStartMonth, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		m := start.AddDate(0, i, 0)
		w.months[i] = m
		w.index[m] = i
	}
	return w, nil
}

// Months returns a copy of the window's months in chronological order.
func (w Window) Months() []time.Time {
	out := make([]time.Time, len(w.months))
	copy(out, w.months)
	return out
}

// Len is the number of months in the window.
func (w Window) Len() int {
	return len(w.months)
}

// Index returns the slot of the month containing t.
func (w Window) Index(t time.Time) (int, bool) {
	i, ok := w.index[records.MonthStart(t)]
	return i, ok
}

// Contains reports whether t falls in a window month.
func (w Window) Contains(t time.Time) bool {
	_, ok := w.Index(t)
	return ok
}

// First is the opening month of the window.
func (w Window) First() time.Time {
	if len(w.months) == 0 {
		return time.Time{}
	}
	return w.months[0]
}

// Last is the closing month of the window.
func (w Window) Last() time.Time {
	if len(w.months) == 0 {
		return time.Time{}
	}
	return w.months[len(w.months)-1]
}

// withinBounds reports whether month m lies in [start, end] at month granularity.
func withinBounds(m, start time.Time, end *time.Time) bool {
	if m.Before(records.MonthStart(start)) {
		return false
	}
	if end != nil && m.After(records.MonthStart(*end)) {
		return false
	}
	return true
}

// FiscalYearOf returns the starting calendar year of the fiscal year containing t.
func FiscalYearOf(t time.Time) int {
	if t.Month() >= FiscalStartMonth {
		return t.Year()
	}
	return t.Year() - 1
}
