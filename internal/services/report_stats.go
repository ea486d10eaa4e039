package services

import (
	"sync/atomic"
	"time"

	"saaspulse/internal/report"
)

// ReportStats counts the reports handled since the service started
type ReportStats struct {
	Validated    int64      `json:"validated"`
	Degraded     int64      `json:"degraded"`
	RenderFailed int64      `json:"render_failed"`
	LastReportAt *time.Time `json:"last_report_at,omitempty"`
}

// Total is the number of assembled reports
func (s ReportStats) Total() int64 {
	return s.Validated + s.Degraded
}

type reportCounters struct {
	validated    atomic.Int64
	degraded     atomic.Int64
	renderFailed atomic.Int64
	lastReport   atomic.Int64 // unix nanos
}

func (c *reportCounters) assembled(p *report.Payload, at time.Time) {
	if _, ok := p.Outcome.(report.Validated); ok {
		c.validated.Add(1)
	} else {
		c.degraded.Add(1)
	}
	c.lastReport.Store(at.UnixNano())
}

func (c *reportCounters) snapshot() ReportStats {
	s := ReportStats{
		Validated:    c.validated.Load(),
		Degraded:     c.degraded.Load(),
		RenderFailed: c.renderFailed.Load(),
	}
	if ns := c.lastReport.Load(); ns != 0 {
		at := time.Unix(0, ns).UTC()
		s.LastReportAt = &at
	}
	return s
}
