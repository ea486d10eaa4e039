package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Constructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
		ctxKey   string
		ctxValue string
	}{
		{"config", NewConfigError("report.anchor", cause), ErrTypeConfig, "[CONFIG] invalid value for report.anchor: boom", "key", "report.anchor"},
		{"external", NewExternalError("chat completion", cause), ErrTypeExternal, "[EXTERNAL] chat completion request failed: boom", "service", "chat completion"},
		{"render", NewRenderError("pdf", cause), ErrTypeRender, "[RENDER] failed to render pdf report: boom", "format", "pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.ctxValue, tt.err.Context[tt.ctxKey])
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}

func TestAppError_NoCause(t *testing.T) {
	err := NewRenderError("html", nil)
	assert.Equal(t, "[RENDER] failed to render html report", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

func TestAppError_Is(t *testing.T) {
	err := fmt.Errorf("summarize: %w", NewExternalError("chat completion", errors.New("429")))

	assert.ErrorIs(t, err, &AppError{Type: ErrTypeExternal})
	assert.NotErrorIs(t, err, &AppError{Type: ErrTypeRender})
	assert.NotErrorIs(t, err, &AppError{Type: ErrTypeExternal, Message: "other"})
}

func TestAppError_WithContext(t *testing.T) {
	bare := &AppError{Type: ErrTypeRender}
	bare.WithContext("report_id", "r-1")
	assert.Equal(t, "r-1", bare.Context["report_id"])

	var appErr *AppError
	wrapped := errors.Join(errors.New("outer"), NewRenderError("xlsx", errors.New("disk full")))
	require.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, "xlsx", appErr.Context["format"])
}
