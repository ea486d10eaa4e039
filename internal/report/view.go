package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"saaspulse/internal/analytics"
)

// NullDisplay is shown for a metric that is undefined for valid data
const NullDisplay = "—"

var printer = message.NewPrinter(language.English)

// reasonNotices explains a degraded report to the reader
var reasonNotices = map[analytics.Reason]string{
	analytics.ReasonNoRows:               "The uploaded file contains no transactions.",
	analytics.ReasonMissingColumns:       "The uploaded file is missing required columns.",
	analytics.ReasonNegativeAmount:       "The uploaded file contains negative charge amounts.",
	analytics.ReasonInsufficientCoverage: "The uploaded file has no charges in the last 30 days before the analysis date.",
}

// fields returns the named values substituted into report templates. Every
// key is always present.
func fields(p *Payload) map[string]interface{} {
	w := p.Window
	v := map[string]interface{}{
		"report_id":              p.ReportID,
		"generated_at":           formatGeneratedAt(p.GeneratedAt),
		"analysis_date":          w.AnalysisDate.Format("2006-01-02 15:04 UTC"),
		"current_period":         period(w.CurrentStart, w.AnalysisDate),
		"previous_period":        period(w.PreviousStart, w.CurrentStart),
		"rows":                   printer.Sprintf("%d", p.Rows),
		"fingerprint":            p.Fingerprint,
		"outcome":                p.Outcome.Kind(),
		"notice":                 "",
		"total_revenue":          Placeholder,
		"previous_total_revenue": Placeholder,
		"revenue_change_percent": Placeholder,
		"annualized_run_rate":    Placeholder,
		"active_customers":       Placeholder,
		"new_customers":          Placeholder,
		"churned_customers":      Placeholder,
		"churn_rate":             Placeholder,
		"summary_text":           p.Summary,
		"summary_state":          string(p.SummaryState),
	}

	switch o := p.Outcome.(type) {
	case Validated:
		v["total_revenue"] = currency(o.Revenue.TotalRevenue)
		v["previous_total_revenue"] = currency(o.Revenue.PreviousTotalRevenue)
		v["revenue_change_percent"] = signedPercent(o.Revenue.RevenueChangePercent)
		v["annualized_run_rate"] = nullCurrency(o.Revenue.AnnualizedRunRate)
		v["active_customers"] = printer.Sprintf("%d", o.Customers.ActiveCustomers)
		v["new_customers"] = nullCount(o.Customers.NewCustomers)
		v["churned_customers"] = printer.Sprintf("%d", o.Customers.ChurnedCustomers)
		v["churn_rate"] = percent(o.Customers.ChurnRate)
	case Degraded:
		v["notice"] = notice(o.Reason)
		v["revenue_change_percent"] = NullDisplay
		v["churn_rate"] = NullDisplay
	}

	return v
}

func notice(ve *analytics.ValidationError) string {
	if ve == nil {
		return ""
	}
	if n, ok := reasonNotices[ve.Reason]; ok {
		return n
	}
	return "The uploaded file could not be analysed."
}

func period(from, to time.Time) string {
	return from.Format("2006-01-02") + " to " + to.Format("2006-01-02")
}

// fixed renders a non-negative amount with two decimals and thousands
// separators. It works on the decimal string so no cents are lost.
func fixed(d decimal.Decimal) string {
	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.Grow(len(s) + len(whole)/3)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

func currency(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + fixed(d.Neg())
	}
	return "$" + fixed(d)
}

func nullCurrency(n analytics.Null[decimal.Decimal]) string {
	v, ok := n.Get()
	if !ok {
		return NullDisplay
	}
	return currency(v)
}

func percent(n analytics.Null[decimal.Decimal]) string {
	v, ok := n.Get()
	if !ok {
		return NullDisplay
	}
	if v.IsNegative() {
		return "-" + fixed(v.Neg()) + "%"
	}
	return fixed(v) + "%"
}

func signedPercent(n analytics.Null[decimal.Decimal]) string {
	v, ok := n.Get()
	if ok && v.IsPositive() {
		return "+" + percent(n)
	}
	return percent(n)
}

func nullCount(n analytics.Null[int]) string {
	v, ok := n.Get()
	if !ok {
		return NullDisplay
	}
	return printer.Sprintf("%d", v)
}
