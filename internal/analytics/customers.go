package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"saaspulse/pkg/contracts/domain"
)

// ComputeCustomerMetrics counts distinct customers per period and derives new
// customers and churn. NewCustomers and ChurnRate are unset when the previous
// period has no customers.
func ComputeCustomerMetrics(table *domain.Table, analysisDate time.Time) CustomerMetrics {
	current, previous := NewWindow(analysisDate).Partition(table.Records())

	cur := customerSet(current)
	prev := customerSet(previous)

	m := CustomerMetrics{
		ActiveCustomers:  len(cur),
		ChurnedCustomers: difference(prev, cur),
	}

	if len(prev) == 0 {
		return m
	}

	m.NewCustomers = Some(difference(cur, prev))
	rate := decimal.NewFromInt(int64(m.ChurnedCustomers)).
		Div(decimal.NewFromInt(int64(len(prev)))).
		Mul(hundred)
	m.ChurnRate = Some(round2(rate))
	return m
}

func customerSet(records []domain.Transaction) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		set[r.CustomerID] = struct{}{}
	}
	return set
}

// difference returns |a - b|
func difference(a, b map[string]struct{}) int {
	n := 0
	for id := range a {
		if _, ok := b[id]; !ok {
			n++
		}
	}
	return n
}
