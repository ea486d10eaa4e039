package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"saaspulse/internal/infrastructure"
)

// Problem type URIs (RFC 7807)
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeServiceDown      = "/errors/service-unavailable"
	TypeTimeout          = "/errors/timeout"
	TypeClientClosed     = "/errors/client-closed"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeMethodNotAllowed = "/errors/method-not-allowed"

	TypeUnsupportedFile   = "/errors/upload/unsupported-file"
	TypeInvalidCSV        = "/errors/upload/invalid-csv"
	TypeUnsupportedFormat = "/errors/report/unsupported-format"
	TypeRenderFailed      = "/errors/report/render-failed"
	TypeWebSocketUpgrade  = "/errors/websocket/upgrade-failed"
)

// StatusClientClosedRequest is the non-standard status logged when the
// uploader goes away before the report is ready.
const StatusClientClosedRequest = 499

var codeProblemTypes = map[string]string{
	CodeInvalidRequest:    TypeValidation,
	CodeValidationFailed:  TypeValidation,
	CodeMissingParameter:  TypeValidation,
	CodeInvalidParameter:  TypeValidation,
	CodeUnsupportedFile:   TypeUnsupportedFile,
	CodeInvalidCSV:        TypeInvalidCSV,
	CodeUnsupportedFormat: TypeUnsupportedFormat,
	CodeRenderFailed:      TypeRenderFailed,
	CodePayloadTooLarge:   TypePayloadTooLarge,
	CodeRateLimitExceeded: TypeRateLimit,
	CodeWebSocketUpgrade:  TypeWebSocketUpgrade,
}

// ErrorHandler writes every handler failure as a problem document
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler. includeStack adds goroutine
// stacks to 5xx responses and is meant for development only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err and responds with its problem document
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	ctx := r.Context()
	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	switch {
	case problem.Status == StatusClientClosedRequest:
		level = slog.LevelInfo
	case problem.Status >= http.StatusInternalServerError:
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	h.annotate(ctx, problem)
	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", stackTrace())
	}
	render.Render(w, r, problem)
}

// ErrorToProblem maps err onto a problem document without writing it
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"Report generation did not finish in time", r.URL.Path)
	case errors.Is(err, context.Canceled):
		return NewProblemDetails(StatusClientClosedRequest, TypeClientClosed, "Client Closed Request",
			"The request was cancelled before the report was ready", r.URL.Path)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErrorToProblem(apiErr, r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErrorToProblem(appErr, r)
	}

	return internalProblem(r)
}

func apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType, ok := codeProblemTypes[apiErr.ErrorCode]
	if !ok {
		problemType = TypeInternal
	}

	problem := NewProblemDetails(apiErr.StatusCode, problemType, http.StatusText(apiErr.StatusCode),
		apiErr.Message, r.URL.Path).
		WithExtension("error_code", apiErr.ErrorCode)
	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

func appErrorToProblem(appErr *AppError, r *http.Request) *ProblemDetails {
	var problem *ProblemDetails
	switch appErr.Type {
	case ErrTypeRender:
		problem = NewProblemDetails(http.StatusInternalServerError, TypeRenderFailed,
			"Report Rendering Failed", appErr.Message, r.URL.Path)
	case ErrTypeExternal:
		problem = NewProblemDetails(http.StatusBadGateway, TypeServiceDown,
			"Upstream Service Failed", appErr.Message, r.URL.Path)
	default:
		// config errors never reach clients verbatim
		return internalProblem(r).WithExtension("error_type", string(appErr.Type))
	}

	problem.WithExtension("error_type", string(appErr.Type))
	for k, v := range appErr.Context {
		problem.WithExtension(k, v)
	}
	return problem
}

func internalProblem(r *http.Request) *ProblemDetails {
	return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred while processing your request", r.URL.Path)
}

// annotate attaches the IDs a user can quote when reporting a failure
func (h *ErrorHandler) annotate(ctx context.Context, problem *ProblemDetails) {
	problem.WithExtension("trace_id", traceID(ctx))
	if reportID := infrastructure.GetReportID(ctx); reportID != "" {
		problem.WithExtension("report_id", reportID)
	}
}

func traceID(ctx context.Context) string {
	if id := infrastructure.GetTraceID(ctx); id != "" {
		return id
	}
	return middleware.GetReqID(ctx)
}

// HandlePanic logs a recovered panic and responds with a 500 problem
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	ctx := r.Context()
	h.logger.ErrorContext(ctx, "panic recovered",
		slog.Any("panic", recovered),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(http.StatusInternalServerError, TypeInternal,
		"Internal Server Error", "An unexpected error occurred", r.URL.Path)
	h.annotate(ctx, problem)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", stackTrace())
	}
	render.Render(w, r, problem)
}

// NotFound answers unknown routes
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r.URL.Path)
	h.annotate(r.Context(), problem)
	render.Render(w, r, problem)
}

// MethodNotAllowed answers known routes hit with the wrong method
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(http.StatusMethodNotAllowed, TypeMethodNotAllowed, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path)
	h.annotate(r.Context(), problem)
	render.Render(w, r, problem)
}

func stackTrace() string {
	buf := make([]byte, 8<<10)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
