package analytics

import (
	"fmt"
	"strings"
	"time"

	"saaspulse/pkg/contracts/domain"
)

// PeriodDays is the length of each comparison period
const PeriodDays = 30

// Period identifies which comparison period a timestamp falls in
type Period int

const (
	// PeriodOutside is older than the previous period or not before the analysis date
	PeriodOutside Period = iota
	// PeriodCurrent is [a-30d, a)
	PeriodCurrent
	// PeriodPrevious is [a-60d, a-30d)
	PeriodPrevious
)

// String returns the string representation of the period
func (p Period) String() string {
	switch p {
	case PeriodCurrent:
		return "current"
	case PeriodPrevious:
		return "previous"
	default:
		return "outside"
	}
}

// Window holds the bounds of the current and previous periods
type Window struct {
	AnalysisDate  time.Time `json:"analysis_date"`
	CurrentStart  time.Time `json:"current_start"`
	PreviousStart time.Time `json:"previous_start"`
}

// NewWindow anchors the two periods at analysisDate. A zero analysisDate
// means now. All bounds are UTC.
func NewWindow(analysisDate time.Time) Window {
	if analysisDate.IsZero() {
		analysisDate = time.Now()
	}
	a := analysisDate.UTC()
	current := a.AddDate(0, 0, -PeriodDays)
	return Window{
		AnalysisDate:  a,
		CurrentStart:  current,
		PreviousStart: current.AddDate(0, 0, -PeriodDays),
	}
}

// Classify returns the period ts belongs to
func (w Window) Classify(ts time.Time) Period {
	switch {
	case ts.Before(w.PreviousStart), !ts.Before(w.AnalysisDate):
		return PeriodOutside
	case ts.Before(w.CurrentStart):
		return PeriodPrevious
	default:
		return PeriodCurrent
	}
}

// Partition splits records into the current and previous periods. Records
// outside both are dropped. The input is not modified.
func (w Window) Partition(records []domain.Transaction) (current, previous []domain.Transaction) {
	for _, r := range records {
		switch w.Classify(r.ChargeTimestamp) {
		case PeriodCurrent:
			current = append(current, r)
		case PeriodPrevious:
			previous = append(previous, r)
		}
	}
	return current, previous
}

// String formats the window for logs
func (w Window) String() string {
	const layout = "2006-01-02T15:04Z"
	return fmt.Sprintf("current=[%s, %s) previous=[%s, %s)",
		w.CurrentStart.Format(layout), w.AnalysisDate.Format(layout),
		w.PreviousStart.Format(layout), w.CurrentStart.Format(layout))
}

// Anchor selects how the analysis date is chosen when none is given
type Anchor string

const (
	// AnchorNow uses the current time
	AnchorNow Anchor = "now"
	// AnchorLatest uses the end of the day holding the latest charge
	AnchorLatest Anchor = "latest"
)

// ParseAnchor parses an anchor name. The empty string yields AnchorNow.
func ParseAnchor(s string) (Anchor, error) {
	switch Anchor(strings.ToLower(strings.TrimSpace(s))) {
	case "", AnchorNow:
		return AnchorNow, nil
	case AnchorLatest:
		return AnchorLatest, nil
	default:
		return "", fmt.Errorf("unknown anchor %q: want %q or %q", s, AnchorNow, AnchorLatest)
	}
}

// ResolveAnalysisDate applies the anchor policy to a table. Charge dates are
// day granular, so AnchorLatest uses midnight after the latest charge day to
// keep that day inside the current period. An empty table falls back to now.
func ResolveAnalysisDate(anchor Anchor, table *domain.Table, now time.Time) time.Time {
	now = now.UTC()
	if anchor != AnchorLatest {
		return now
	}
	latest, ok := table.MaxTimestamp()
	if !ok {
		return now
	}
	latest = latest.UTC()
	day := time.Date(latest.Year(), latest.Month(), latest.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, 1)
}
