package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"saaspulse/internal/report"
)

// CSVRenderer writes the report metrics as CSV
type CSVRenderer struct {
	// BOMPrefix adds a UTF-8 BOM for Excel compatibility
	BOMPrefix bool
}

// Render implements report.Renderer
func (c CSVRenderer) Render(_ context.Context, w io.Writer, p *report.Payload) error {
	if c.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"metric", "value", "unit"}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, h := range headerRows(p) {
		if err := writer.Write([]string{h[0], h[1], ""}); err != nil {
			return fmt.Errorf("failed to write %s: %w", h[0], err)
		}
	}
	for _, r := range metricRows(p) {
		if err := writer.Write([]string{r.Metric, r.Value, r.Unit}); err != nil {
			return fmt.Errorf("failed to write %s: %w", r.Metric, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ContentType implements report.Renderer
func (CSVRenderer) ContentType() string { return "text/csv; charset=utf-8" }

// Extension implements report.Renderer
func (CSVRenderer) Extension() string { return "csv" }
