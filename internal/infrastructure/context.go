package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey string

// Context keys read by the log handler
const (
	TraceIDContextKey  contextKey = "trace_id"
	ReportIDContextKey contextKey = "report_id"
)

// GenerateTraceID creates a new unique trace ID using UUID v4
func GenerateTraceID() string {
	return uuid.New().String()
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	return stringValue(ctx, TraceIDContextKey)
}

// EnsureTraceID returns ctx unchanged if it carries a trace ID, otherwise a
// child context with a fresh one.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return WithTraceID(ctx, GenerateTraceID())
	}
	return ctx
}

// WithReportID tags ctx with the report being generated. Every log line
// written with that context carries report_id.
func WithReportID(ctx context.Context, reportID string) context.Context {
	return context.WithValue(ctx, ReportIDContextKey, reportID)
}

// GetReportID retrieves the report ID from context
func GetReportID(ctx context.Context) string {
	return stringValue(ctx, ReportIDContextKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}
