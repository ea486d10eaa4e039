package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saaspulse/internal/infrastructure"
)

func newTestHandler(includeStack bool) (*ErrorHandler, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewErrorHandler(logger, includeStack), &buf
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantDetail string
	}{
		{
			name:       "deadline exceeded",
			err:        fmt.Errorf("summarize: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "client went away",
			err:        fmt.Errorf("ingest: %w", context.Canceled),
			wantStatus: StatusClientClosedRequest,
			wantType:   TypeClientClosed,
		},
		{
			name:       "unsupported file",
			err:        ErrUnsupportedFile,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeUnsupportedFile,
			wantDetail: "Only CSV files supported",
		},
		{
			name:       "invalid csv",
			err:        InvalidCSV(errors.New("line 2, column amount: invalid")),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeInvalidCSV,
			wantDetail: "Invalid CSV format",
		},
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("handler: %w", UnsupportedFormat(errors.New("docx"))),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeUnsupportedFormat,
			wantDetail: "Unsupported output format",
		},
		{
			name:       "render failed",
			err:        RenderFailed(errors.New("map has no entry for key")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeRenderFailed,
			wantDetail: "Report rendering failed",
		},
		{
			name:       "render app error",
			err:        fmt.Errorf("deliver: %w", NewRenderError("pdf", errors.New("chrome exited"))),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeRenderFailed,
			wantDetail: "failed to render pdf report",
		},
		{
			name:       "external app error",
			err:        NewExternalError("chat completion", nil),
			wantStatus: http.StatusBadGateway,
			wantType:   TypeServiceDown,
			wantDetail: "chat completion request failed",
		},
		{
			name:       "config app error",
			err:        NewConfigError("report.anchor", errors.New("unknown anchor")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
		{
			name:       "unknown error",
			err:        errors.New("something broke"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(false)
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)

			h.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.EqualValues(t, tt.wantStatus, body["status"])
			assert.Equal(t, "/api/analyze", body["instance"])
			assert.Contains(t, body, "trace_id")
			assert.NotContains(t, body, "stack")
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, body["detail"])
			}
		})
	}
}

func TestErrorHandler_ContextIDs(t *testing.T) {
	h, logs := newTestHandler(false)
	ctx := infrastructure.WithTraceID(context.Background(), "trace-abc")
	ctx = infrastructure.WithReportID(ctx, "rep-42")
	r := httptest.NewRequest(http.MethodPost, "/api/analyze", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	h.HandleError(w, r, NewRenderError("xlsx", errors.New("sheet limit")))

	body := decodeProblem(t, w)
	assert.Equal(t, "trace-abc", body["trace_id"])
	assert.Equal(t, "rep-42", body["report_id"])
	assert.Equal(t, "xlsx", body["format"])
	assert.Equal(t, string(ErrTypeRender), body["error_type"])
	assert.Contains(t, logs.String(), `"level":"ERROR"`)
}

func TestErrorHandler_ClientClosedLogsAtInfo(t *testing.T) {
	h, logs := newTestHandler(false)
	w := httptest.NewRecorder()

	h.HandleError(w, httptest.NewRequest(http.MethodPost, "/api/analyze", nil), context.Canceled)

	assert.Equal(t, StatusClientClosedRequest, w.Code)
	assert.Contains(t, logs.String(), `"level":"INFO"`)
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	h, logs := newTestHandler(false)
	w := httptest.NewRecorder()

	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, w.Body.Len())
	assert.Equal(t, 0, logs.Len())
}

func TestErrorHandler_Details(t *testing.T) {
	h, logs := newTestHandler(false)
	w := httptest.NewRecorder()

	h.HandleError(w, httptest.NewRequest(http.MethodPost, "/api/analyze", nil), InvalidCSV(errors.New("bad header")))

	body := decodeProblem(t, w)
	assert.Equal(t, CodeInvalidCSV, body["error_code"])
	assert.Equal(t, "bad header", body["details"])
	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), "request failed")
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	h, logs := newTestHandler(true)

	w := httptest.NewRecorder()
	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))
	assert.Contains(t, decodeProblem(t, w), "stack")
	assert.Contains(t, logs.String(), `"level":"ERROR"`)

	w = httptest.NewRecorder()
	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), ErrUnsupportedFile)
	assert.NotContains(t, decodeProblem(t, w), "stack")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	tests := []struct {
		name         string
		includeStack bool
	}{
		{"without stack", false},
		{"with stack", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, logs := newTestHandler(tt.includeStack)
			w := httptest.NewRecorder()

			h.HandlePanic(w, httptest.NewRequest(http.MethodGet, "/", nil), "kaboom")

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, TypeInternal, body["type"])
			if tt.includeStack {
				assert.Equal(t, "kaboom", body["panic"])
			} else {
				assert.NotContains(t, body, "panic")
			}
			assert.Contains(t, logs.String(), "panic recovered")
		})
	}
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(false)

	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeMethodNotAllowed, body["type"])
	assert.Equal(t, "Method DELETE is not allowed for this endpoint", body["detail"])
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	p := NewProblemDetails(http.StatusBadRequest, TypeInvalidCSV, "Bad Request", "", "").
		WithExtension("error_code", CodeInvalidCSV).
		WithExtension("type", "ignored")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, TypeInvalidCSV, body["type"])
	assert.Equal(t, CodeInvalidCSV, body["error_code"])
	assert.NotContains(t, body, "detail")
	assert.NotContains(t, body, "instance")
}
