package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"saaspulse/pkg/contracts/domain"
)

// monthsPerYear scales a trailing 30-day total to a naive annual run rate
var monthsPerYear = decimal.NewFromInt(12)

// ComputeRevenueMetrics sums revenue per period. RevenueChangePercent is unset
// when previous revenue is not positive; AnnualizedRunRate is unset when
// current revenue is not positive.
func ComputeRevenueMetrics(table *domain.Table, analysisDate time.Time) RevenueMetrics {
	current, previous := NewWindow(analysisDate).Partition(table.Records())

	cur, prev := sum(current), sum(previous)

	// Ratios use the unrounded sums; only the reported figures are rounded.
	m := RevenueMetrics{
		TotalRevenue:         round2(cur),
		PreviousTotalRevenue: round2(prev),
	}

	if prev.IsPositive() {
		change := cur.Sub(prev).Div(prev).Mul(hundred)
		m.RevenueChangePercent = Some(round2(change))
	}

	if cur.IsPositive() {
		m.AnnualizedRunRate = Some(round2(cur.Mul(monthsPerYear)))
	}

	return m
}

func sum(records []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}
