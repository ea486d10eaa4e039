package analytics

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Null is a value that may be undefined. The zero value is unset.
type Null[T any] struct {
	value T
	valid bool
}

// Some returns a set Null holding v
func Some[T any](v T) Null[T] {
	return Null[T]{value: v, valid: true}
}

// None returns an unset Null
func None[T any]() Null[T] {
	return Null[T]{}
}

// Get returns the value and whether it is set
func (n Null[T]) Get() (T, bool) {
	return n.value, n.valid
}

// Valid reports whether the value is set
func (n Null[T]) Valid() bool {
	return n.valid
}

// MarshalJSON encodes an unset value as null
func (n Null[T]) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

// UnmarshalJSON decodes null as unset
func (n *Null[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = Null[T]{}
		return nil
	}
	if err := json.Unmarshal(data, &n.value); err != nil {
		return err
	}
	n.valid = true
	return nil
}

// CustomerMetrics describes customer activity across the two periods
type CustomerMetrics struct {
	ActiveCustomers  int
	NewCustomers     Null[int]
	ChurnedCustomers int
	ChurnRate        Null[decimal.Decimal] // percent, 2dp
}

// MarshalJSON emits the fields shared with the summary collaborator.
// ChurnedCustomers stays internal.
func (m CustomerMetrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ActiveCustomers int          `json:"active_customers"`
		NewCustomers    Null[int]    `json:"new_customers"`
		ChurnRate       *json.Number `json:"customer_churn_rate"`
	}{
		ActiveCustomers: m.ActiveCustomers,
		NewCustomers:    m.NewCustomers,
		ChurnRate:       fixedNumber(m.ChurnRate),
	})
}

// RevenueMetrics describes revenue across the two periods. Amounts are in
// major currency units.
type RevenueMetrics struct {
	TotalRevenue         decimal.Decimal
	PreviousTotalRevenue decimal.Decimal
	RevenueChangePercent Null[decimal.Decimal]
	AnnualizedRunRate    Null[decimal.Decimal]
}

// MarshalJSON emits amounts as fixed two-place JSON numbers
func (m RevenueMetrics) MarshalJSON() ([]byte, error) {
	total := json.Number(m.TotalRevenue.StringFixed(2))
	previous := json.Number(m.PreviousTotalRevenue.StringFixed(2))
	return json.Marshal(struct {
		TotalRevenue         json.Number  `json:"total_revenue"`
		PreviousTotalRevenue json.Number  `json:"previous_total_revenue"`
		RevenueChangePercent *json.Number `json:"revenue_change_percent"`
		AnnualizedRunRate    *json.Number `json:"annualized_run_rate"`
	}{
		TotalRevenue:         total,
		PreviousTotalRevenue: previous,
		RevenueChangePercent: fixedNumber(m.RevenueChangePercent),
		AnnualizedRunRate:    fixedNumber(m.AnnualizedRunRate),
	})
}

func fixedNumber(n Null[decimal.Decimal]) *json.Number {
	v, ok := n.Get()
	if !ok {
		return nil
	}
	num := json.Number(v.StringFixed(2))
	return &num
}

var hundred = decimal.NewFromInt(100)

// round2 rounds half away from zero to two decimal places
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
