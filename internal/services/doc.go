// Package services implements the business logic layer of SaaSPulse. It sits
// between the HTTP handlers and the CLI on one side and the ingest, analytics,
// report and exporter packages on the other.
//
// # Available Services
//
//	- ReportService: validates an upload or local file, ingests it, resolves
//	  the analysis date, assembles the report and renders it
//	- HealthService: health, readiness and liveness checks
//
// # Error Handling
//
// ReportService returns *errors.APIError values for client mistakes so the
// HTTP layer can pass them straight to the ErrorHandler:
//
//	- a file without a .csv suffix: 400 UNSUPPORTED_FILE
//	- unreadable CSV, missing columns or bad values: 400 INVALID_CSV
//	- an unknown output format: 400 UNSUPPORTED_FORMAT
//	- an oversized upload: 413 PAYLOAD_TOO_LARGE
//	- a renderer failure: 500 RENDER_FAILED
//
// A table that fails coverage validation is not an error. It yields a
// degraded report that renders normally.
//
// # Testing
//
// Services are tested against real collaborators with a mocked summarizer:
//
//	sum := &MockSummarizer{}
//	sum.On("Summarize", mock.Anything, mock.Anything).Return("text", nil)
//	svc := newTestReportService(t, sum)
package services
