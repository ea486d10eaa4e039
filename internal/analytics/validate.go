package analytics

import (
	"fmt"
	"strings"
	"time"

	"saaspulse/pkg/contracts/domain"
)

// Reason classifies why a table cannot support a full report
type Reason string

const (
	ReasonNoRows               Reason = "no rows"
	ReasonMissingColumns       Reason = "missing columns"
	ReasonNegativeAmount       Reason = "negative amount present"
	ReasonInsufficientCoverage Reason = "insufficient historical coverage"
)

// ValidationError is returned when a table is well formed but cannot
// support the metrics
type ValidationError struct {
	Reason  Reason   `json:"reason"`
	Missing []string `json:"missing,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	if len(ve.Missing) > 0 {
		return fmt.Sprintf("validation failed: %s: %s", ve.Reason, strings.Join(ve.Missing, ", "))
	}
	return "validation failed: " + string(ve.Reason)
}

// Validate checks that the table can support both metric engines. Checks run
// in order and the first failure is returned:
//
//  1. at least one record
//  2. every canonical column present
//  3. no negative amount
//  4. latest charge not older than analysisDate-30d
//
// A zero analysisDate means now.
func Validate(table *domain.Table, analysisDate time.Time) error {
	if table.Len() == 0 {
		return &ValidationError{Reason: ReasonNoRows}
	}

	if missing := table.MissingColumns(); len(missing) > 0 {
		return &ValidationError{Reason: ReasonMissingColumns, Missing: missing}
	}

	for _, r := range table.Records() {
		if r.Amount.IsNegative() {
			return &ValidationError{Reason: ReasonNegativeAmount}
		}
	}

	w := NewWindow(analysisDate)
	latest, _ := table.MaxTimestamp()
	if latest.Before(w.CurrentStart) {
		return &ValidationError{Reason: ReasonInsufficientCoverage}
	}

	return nil
}
