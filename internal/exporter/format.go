package exporter

import (
	"strconv"

	"github.com/shopspring/decimal"

	"saaspulse/internal/analytics"
	"saaspulse/internal/report"
	"saaspulse/pkg/contracts"
)

// row is one metric line of a tabular export
type row struct {
	Metric string
	Value  string
	Unit   string
}

// formatDecimal formats an amount with exactly 2 decimal places
func formatDecimal(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatNullDecimal leaves undefined values empty
func formatNullDecimal(n analytics.Null[decimal.Decimal]) string {
	v, ok := n.Get()
	if !ok {
		return ""
	}
	return formatDecimal(v)
}

func formatNullInt(n analytics.Null[int]) string {
	v, ok := n.Get()
	if !ok {
		return ""
	}
	return strconv.Itoa(v)
}

// metricRows lists the report metrics in display order. Degraded reports
// carry the placeholder for display fields and leave ratios empty.
func metricRows(p *report.Payload) []row {
	rows := []row{
		{"total_revenue", report.Placeholder, "USD"},
		{"previous_total_revenue", report.Placeholder, "USD"},
		{"revenue_change_percent", "", "%"},
		{"annualized_run_rate", report.Placeholder, "USD"},
		{"active_customers", report.Placeholder, "customers"},
		{"new_customers", report.Placeholder, "customers"},
		{"churned_customers", report.Placeholder, "customers"},
		{"customer_churn_rate", "", "%"},
	}

	v, ok := p.Outcome.(report.Validated)
	if !ok {
		return rows
	}

	rows[0].Value = formatDecimal(v.Revenue.TotalRevenue)
	rows[1].Value = formatDecimal(v.Revenue.PreviousTotalRevenue)
	rows[2].Value = formatNullDecimal(v.Revenue.RevenueChangePercent)
	rows[3].Value = formatNullDecimal(v.Revenue.AnnualizedRunRate)
	rows[4].Value = strconv.Itoa(v.Customers.ActiveCustomers)
	rows[5].Value = formatNullInt(v.Customers.NewCustomers)
	rows[6].Value = strconv.Itoa(v.Customers.ChurnedCustomers)
	rows[7].Value = formatNullDecimal(v.Customers.ChurnRate)
	return rows
}

// headerRows lists report metadata written above the metrics
func headerRows(p *report.Payload) [][2]string {
	w := p.Window
	out := [][2]string{
		{"report_id", p.ReportID},
		{"generated_at", p.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC")},
		{"analysis_date", w.AnalysisDate.Format("2006-01-02T15:04:05Z07:00")},
		{"current_period_start", w.CurrentStart.Format("2006-01-02T15:04:05Z07:00")},
		{"previous_period_start", w.PreviousStart.Format("2006-01-02T15:04:05Z07:00")},
		{"rows", strconv.Itoa(p.Rows)},
		{"outcome", p.Outcome.Kind()},
		{"generator", contracts.GetVersionString()},
	}
	if reason := p.Reason(); reason != nil {
		out = append(out, [2]string{"reason", string(reason.Reason)})
	}
	return append(out, [2]string{"summary", p.Summary})
}
