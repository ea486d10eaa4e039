package exporter

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"saaspulse/internal/config"
	"saaspulse/internal/report"
)

// Output format names
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// UnsupportedFormatError is returned by Lookup for an unknown format
type UnsupportedFormatError struct {
	Format    string
	Supported []string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q (supported: %s)", e.Format, strings.Join(e.Supported, ", "))
}

// Set maps format names to renderers
type Set struct {
	renderers map[string]report.Renderer
}

// NewSet registers every built-in format
func NewSet(html *report.HTMLRenderer, cfg config.ExportConfig, logger *slog.Logger) *Set {
	return &Set{renderers: map[string]report.Renderer{
		FormatHTML: html,
		FormatJSON: report.JSONRenderer{},
		FormatCSV:  CSVRenderer{BOMPrefix: true},
		FormatXLSX: XLSXRenderer{},
		FormatPDF:  NewPDFRenderer(html, cfg, logger),
	}}
}

// Lookup returns the renderer for format. An empty format selects HTML.
func (s *Set) Lookup(format string) (report.Renderer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatHTML
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, &UnsupportedFormatError{Format: format, Supported: s.Formats()}
	}
	return r, nil
}

// Formats returns the registered format names, sorted
func (s *Set) Formats() []string {
	out := make([]string, 0, len(s.renderers))
	for f := range s.renderers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
