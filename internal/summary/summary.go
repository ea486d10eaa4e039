// Package summary turns aggregate report metrics into a short executive
// summary using an external text-generation service.
package summary

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrDisabled is returned when no text-generation service is configured
	ErrDisabled = errors.New("summary service disabled")
	// ErrEmptyCompletion is returned when the service answers without text
	ErrEmptyCompletion = errors.New("summary service returned no text")
)

// SystemPrompt constrains the generated summary to the supplied metrics
const SystemPrompt = `You are a neutral analytics assistant generating an executive summary for a SaaS business report.

Rules:
- Base the summary strictly on the provided metrics.
- Do not speculate, forecast, or give advice.
- Do not introduce new metrics or assumptions.
- When referring to annualized run rate, describe it explicitly as "based on the last 30 days" and avoid predictive language (e.g., "projected", "expected").
- If any metric is marked "N/A", null or missing, explicitly state that insufficient data was available for that metric.
- Use a professional, concise, consulting-style tone.
- Limit the summary to 3-4 sentences.
- Each sentence should focus on a distinct category: revenue, customer activity, churn, and data limitations (if applicable).`

// Summarizer produces summary text from a JSON metrics payload
type Summarizer interface {
	Summarize(ctx context.Context, payload []byte) (string, error)
}

// Disabled is a Summarizer that always fails with ErrDisabled
type Disabled struct{}

// Summarize implements Summarizer
func (Disabled) Summarize(context.Context, []byte) (string, error) {
	return "", ErrDisabled
}

// Deduplicated shares one in-flight call between identical payloads
type Deduplicated struct {
	next    Summarizer
	timeout time.Duration
	group   singleflight.Group
}

// NewDeduplicated wraps next. A positive timeout bounds each shared call.
func NewDeduplicated(next Summarizer, timeout time.Duration) *Deduplicated {
	return &Deduplicated{next: next, timeout: timeout}
}

// Summarize implements Summarizer. The shared call keeps the values of the
// caller that started it but not its cancellation, so one caller giving up
// does not fail the others. Each caller stops waiting when its own ctx ends.
func (d *Deduplicated) Summarize(ctx context.Context, payload []byte) (string, error) {
	sum := blake2b.Sum256(payload)
	ch := d.group.DoChan(hex.EncodeToString(sum[:]), func() (interface{}, error) {
		shared := context.WithoutCancel(ctx)
		if d.timeout > 0 {
			var cancel context.CancelFunc
			shared, cancel = context.WithTimeout(shared, d.timeout)
			defer cancel()
		}
		return d.next.Summarize(shared, payload)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// clean trims whitespace and surrounding quotes some models add
func clean(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
