package records

import (
	"fmt"
	"strings"
	"time"

	"github.com/odyssey-erp/ekonum/internal/platform/httpx"
)

// OfferType enumerates catalog item kinds.
type OfferType string

const (
	// OfferOneOff is sold once.
	OfferOneOff OfferType = "one_off"
	// OfferRecurring is billed periodically.
	OfferRecurring OfferType = "recurring"
	// OfferLicense is a resold software license.
	OfferLicense OfferType = "license"
	// OfferHardware is resold equipment.
	OfferHardware OfferType = "hardware"
)

// Recurrence governs how a contract's value is recognised over time.
type Recurrence string

const (
	// RecurrenceOneTime books the value once at the start month.
	RecurrenceOneTime Recurrence = "one_time"
	// RecurrenceMonthly books the value every month between start and end.
	RecurrenceMonthly Recurrence = "monthly"
	// RecurrenceAnnual books the value once a year in the start date's month.
	RecurrenceAnnual Recurrence = "annual"
)

// Offer is a catalog item referenced by contracts.
type Offer struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Type             OfferType `json:"offer_type" validate:"oneof=one_off recurring license hardware"`
	DefaultPrice     float64   `json:"default_price"`
	VariableCostRate *float64  `json:"variable_cost_rate,omitempty"`
}

// Contract is a sold agreement on exactly one offer.
type Contract struct {
	ID         int64      `json:"id"`
	ClientName string     `json:"client_name"`
	OfferID    int64      `json:"offer_id"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Recurrence Recurrence `json:"recurrence" validate:"oneof=one_time monthly annual"`
	TotalValue float64    `json:"total_value"`
	Quantity   int        `json:"quantity"`
	TaxRate    float64    `json:"tax_rate"`
}

// PaymentEvent is an explicit scheduled payment for a contract.
type PaymentEvent struct {
	ID         int64     `json:"id"`
	ContractID int64     `json:"contract_id"`
	Label      string    `json:"label"`
	DueDate    time.Time `json:"due_date"`
	Amount     float64   `json:"amount"`
}

// FixedCost is a recurring expense valid between StartDate and EndDate.
type FixedCost struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	MonthlyAmount float64    `json:"monthly_amount"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}

// Asset is a capital purchase amortised straight-line.
type Asset struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	PurchaseDate       time.Time `json:"purchase_date"`
	PurchaseAmount     float64   `json:"purchase_amount"`
	AmortizationMonths int       `json:"amortization_months" validate:"gt=0"`
}

// Loan is an amortizing liability repaid with a level monthly payment.
type Loan struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Principal  float64   `json:"principal"`
	AnnualRate float64   `json:"annual_rate" validate:"ne=0,gt=-12"`
	StartDate  time.Time `json:"start_date"`
	TermMonths int       `json:"term_months" validate:"gt=0"`
}

// ActualEntry is a recorded historical amount.
type ActualEntry struct {
	ID        int64     `json:"id"`
	EntryDate time.Time `json:"entry_date"`
	Category  Category  `json:"category"`
	Amount    float64   `json:"amount"`
}

// Snapshot bundles one bulk read of every record set.
type Snapshot struct {
	Offers    []Offer        `json:"offers"`
	Contracts []Contract     `json:"contracts"`
	Payments  []PaymentEvent `json:"payments"`
	Fixed     []FixedCost    `json:"fixed_costs"`
	Assets    []Asset        `json:"assets"`
	Loans     []Loan         `json:"loans"`
	Actuals   []ActualEntry  `json:"actuals"`
}

// OfferIndex maps offers by id.
func (s Snapshot) OfferIndex() map[int64]Offer {
	index := make(map[int64]Offer, len(s.Offers))
	for _, offer := range s.Offers {
		index[offer.ID] = offer
	}
	return index
}

// PaymentsByContract groups payment events by their contract id, keeping store order.
func (s Snapshot) PaymentsByContract() map[int64][]PaymentEvent {
	grouped := make(map[int64][]PaymentEvent)
	for _, evt := range s.Payments {
		grouped[evt.ContractID] = append(grouped[evt.ContractID], evt)
	}
	return grouped
}

var (
	// ErrUnknownCategory occurs when an actual entry carries a category outside the taxonomy.
	ErrUnknownCategory = fmt.Errorf("records: unknown category: %w", httpx.ErrValidation)
	// ErrNotMigrated occurs when the backing store has no schema yet.
	ErrNotMigrated = fmt.Errorf("records: store schema missing, run migrations: %w", httpx.ErrUnavailable)
)

// MonthStart truncates t to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads an ISO yyyy-mm-dd date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("records: parse date %q: %w", value, err)
	}
	return t, nil
}
