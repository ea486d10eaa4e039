package report

import (
	"encoding/json"
	"time"

	"saaspulse/internal/analytics"
)

// Placeholder is shown for display fields of a degraded report
const Placeholder = "N/A"

// Fixed summary sentences used when no generated text is available
const (
	FallbackSummary    = "Insufficient historical data to compute one or more metrics for the 30-day analysis window."
	UnavailableSummary = "An automated summary is unavailable for this report. The metrics above were computed from the uploaded data and are unaffected."
)

// Outcome is either Validated or Degraded
type Outcome interface {
	// Kind returns "validated" or "degraded"
	Kind() string
	outcome()
}

// Validated carries the computed metrics of a table that passed validation
type Validated struct {
	Customers analytics.CustomerMetrics
	Revenue   analytics.RevenueMetrics
}

// Kind implements Outcome
func (Validated) Kind() string { return "validated" }
func (Validated) outcome()     {}

// Degraded records why metrics were not computed
type Degraded struct {
	Reason *analytics.ValidationError
}

// Kind implements Outcome
func (Degraded) Kind() string { return "degraded" }
func (Degraded) outcome()     {}

// SummaryState tells where the summary text came from
type SummaryState string

const (
	// SummaryGenerated is text returned by the summarization service
	SummaryGenerated SummaryState = "generated"
	// SummaryFallback is FallbackSummary, used for degraded reports
	SummaryFallback SummaryState = "fallback"
	// SummaryUnavailable is UnavailableSummary, used when the service failed
	SummaryUnavailable SummaryState = "unavailable"
)

// Payload is the immutable result of one report generation
type Payload struct {
	ReportID     string
	GeneratedAt  time.Time
	Window       analytics.Window
	Rows         int
	Fingerprint  string
	Outcome      Outcome
	Summary      string
	SummaryState SummaryState

	started time.Time
}

// metricsPayload is the aggregate-only document sent to the summarizer
type metricsPayload struct {
	Revenue   interface{} `json:"revenue_metrics"`
	Customers interface{} `json:"customer_metrics"`
}

// placeholderCustomers mirrors CustomerMetrics for a degraded report
type placeholderCustomers struct {
	ActiveCustomers string  `json:"active_customers"`
	NewCustomers    string  `json:"new_customers"`
	ChurnRate       *string `json:"customer_churn_rate"`
}

// placeholderRevenue mirrors RevenueMetrics for a degraded report
type placeholderRevenue struct {
	TotalRevenue         string  `json:"total_revenue"`
	PreviousTotalRevenue string  `json:"previous_total_revenue"`
	RevenueChangePercent *string `json:"revenue_change_percent"`
	AnnualizedRunRate    string  `json:"annualized_run_rate"`
}

func (p *Payload) metrics() metricsPayload {
	switch o := p.Outcome.(type) {
	case Validated:
		return metricsPayload{Revenue: o.Revenue, Customers: o.Customers}
	default:
		return metricsPayload{
			Revenue: placeholderRevenue{
				TotalRevenue:         Placeholder,
				PreviousTotalRevenue: Placeholder,
				AnnualizedRunRate:    Placeholder,
			},
			Customers: placeholderCustomers{
				ActiveCustomers: Placeholder,
				NewCustomers:    Placeholder,
			},
		}
	}
}

// Reason returns the validation failure of a degraded report, or nil
func (p *Payload) Reason() *analytics.ValidationError {
	if d, ok := p.Outcome.(Degraded); ok {
		return d.Reason
	}
	return nil
}

// MarshalJSON renders the payload as the public JSON report document
func (p *Payload) MarshalJSON() ([]byte, error) {
	m := p.metrics()
	doc := struct {
		ReportID     string                     `json:"report_id"`
		GeneratedAt  string                     `json:"generated_at"`
		AnalysisDate time.Time                  `json:"analysis_date"`
		Outcome      string                     `json:"outcome"`
		Reason       *analytics.ValidationError `json:"reason,omitempty"`
		Rows         int                        `json:"rows"`
		Fingerprint  string                     `json:"fingerprint"`
		Revenue      interface{}                `json:"revenue_metrics"`
		Customers    interface{}                `json:"customer_metrics"`
		SummaryText  string                     `json:"summary_text"`
		SummaryState SummaryState               `json:"summary_state"`
	}{
		ReportID:     p.ReportID,
		GeneratedAt:  formatGeneratedAt(p.GeneratedAt),
		AnalysisDate: p.Window.AnalysisDate,
		Outcome:      p.Outcome.Kind(),
		Reason:       p.Reason(),
		Rows:         p.Rows,
		Fingerprint:  p.Fingerprint,
		Revenue:      m.Revenue,
		Customers:    m.Customers,
		SummaryText:  p.Summary,
		SummaryState: p.SummaryState,
	}
	return json.Marshal(doc)
}

func formatGeneratedAt(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 UTC")
}
