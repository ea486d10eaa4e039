// Package http implements the HTTP handlers of the SaaSPulse web service.
// Handlers stay thin: they decode the request, call a service and write the
// response. Every error goes through errors.ErrorHandler and is answered
// with an RFC 7807 problem document.
//
// Routes:
//
//	GET  /                  upload form
//	POST /api/analyze       multipart field "file"; query format, anchor, analysis_date
//	GET  /api/formats       registered output formats
//	GET  /api/health        health, with /ready and /live sub-routes
//	GET  /api/version       build information
//
// analysis_date is the exclusive end of the current period. Charges dated on
// that day are not counted; anchor=latest uses the day after the latest
// charge instead.
//
// A report that fails coverage validation is still answered with 200. Its
// X-Report-Outcome header is "degraded" and the body carries the notice.
package http
