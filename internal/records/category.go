package records

import (
	"fmt"
	"strings"
)

// Category is the closed taxonomy of budget line items recorded as actuals.
type Category uint8

const (
	CategoryRevenue Category = iota
	CategoryVariableCosts
	CategoryFixedCosts
	CategoryAmortization
	CategoryLoanInterest
	CategoryLoanPrincipal
)

// CategoryCount is the number of categories; buckets are sized with it.
const CategoryCount = int(CategoryLoanPrincipal) + 1

var categoryNames = [CategoryCount]string{
	CategoryRevenue:       "revenue",
	CategoryVariableCosts: "variable_costs",
	CategoryFixedCosts:    "fixed_costs",
	CategoryAmortization:  "amortization",
	CategoryLoanInterest:  "loan_interest",
	CategoryLoanPrincipal: "loan_principal",
}

// Categories lists every category in taxonomy order.
func Categories() [CategoryCount]Category {
	var all [CategoryCount]Category
	for i := range all {
		all[i] = Category(i)
	}
	return all
}

// Valid reports whether c belongs to the taxonomy.
func (c Category) Valid() bool {
	return int(c) < CategoryCount
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", uint8(c))
	}
	return categoryNames[c]
}

// ParseCategory resolves the wire name of a category.
func ParseCategory(value string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for i, name := range categoryNames {
		if name == normalized {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, value)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
