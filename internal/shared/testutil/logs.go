package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// LogRecord is one captured log entry. Attrs include those added through
// logger.With.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type logStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogRecorder is a slog.Handler that keeps every record in memory
type LogRecorder struct {
	store *logStore
	attrs []slog.Attr
	group string
	t     testing.TB
}

// NewTestLogger returns a logger writing into a fresh LogRecorder
func NewTestLogger(t testing.TB) (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{store: &logStore{}, t: t}
	return slog.New(rec), rec
}

// Enabled implements slog.Handler. Every level is captured.
func (h *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler
func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		attrs[key] = a.Value.Resolve().Any()
		return true
	})

	h.store.mu.Lock()
	h.store.records = append(h.store.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.store.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler
func (h *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

// WithGroup implements slog.Handler
func (h *LogRecorder) WithGroup(name string) slog.Handler {
	next := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	next.group = name
	return &next
}

// Records returns a copy of the captured records
func (h *LogRecorder) Records() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return append([]LogRecord(nil), h.store.records...)
}

// Find returns the first record with the given level and message
func (h *LogRecorder) Find(level slog.Level, message string) (LogRecord, bool) {
	for _, r := range h.Records() {
		if r.Level == level && r.Message == message {
			return r, true
		}
	}
	return LogRecord{}, false
}

// Count returns the number of records at or above level
func (h *LogRecorder) Count(level slog.Level) int {
	n := 0
	for _, r := range h.Records() {
		if r.Level >= level {
			n++
		}
	}
	return n
}

// AssertLogged fails the test unless a record with level and message exists
func AssertLogged(t testing.TB, h *LogRecorder, level slog.Level, message string) LogRecord {
	t.Helper()
	r, ok := h.Find(level, message)
	assert.Truef(t, ok, "expected %s log %q", level, message)
	return r
}

// AssertNoErrors fails the test if anything was logged at error level
func AssertNoErrors(t testing.TB, h *LogRecorder) {
	t.Helper()
	for _, r := range h.Records() {
		if r.Level >= slog.LevelError {
			assert.Failf(t, "unexpected error log", "%s %v", r.Message, r.Attrs)
		}
	}
}
