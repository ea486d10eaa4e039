// Package api contains the HTTP contract of the SaaSPulse v1 API.
package api

import (
	"net/url"
	"strings"
)

// UploadField is the multipart field carrying the CSV file
const UploadField = "file"

// Response headers set on rendered reports
const (
	HeaderReportID      = "X-Report-ID"
	HeaderReportOutcome = "X-Report-Outcome"
	HeaderSummaryState  = "X-Report-Summary"
)

// AnalyzeRequest holds the query parameters of POST /api/analyze. Unknown
// formats are rejected by the exporter registry, not here, so the error lists
// the registered formats. AnalysisDate is the exclusive end of the current
// period: charges dated on it fall outside the report window.
type AnalyzeRequest struct {
	Format       string `json:"format" query:"format"`
	Anchor       string `json:"anchor" query:"anchor" validate:"omitempty,oneof=now latest"`
	AnalysisDate string `json:"analysis_date" query:"analysis_date" validate:"omitempty,isodate"`
}

// AnalyzeRequestFromQuery reads an AnalyzeRequest from URL query values
func AnalyzeRequestFromQuery(q url.Values) AnalyzeRequest {
	return AnalyzeRequest{
		Format:       strings.TrimSpace(q.Get("format")),
		Anchor:       strings.ToLower(strings.TrimSpace(q.Get("anchor"))),
		AnalysisDate: strings.TrimSpace(q.Get("analysis_date")),
	}
}

// FormatsResponse lists the output formats of GET /api/formats
type FormatsResponse struct {
	Formats []string `json:"formats"`
	Default string   `json:"default"`
}
