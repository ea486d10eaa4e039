package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "saaspulse/internal/errors"
)

type analyzeParams struct {
	Format       string `query:"format" validate:"omitempty,oneof=html json csv"`
	Anchor       string `query:"anchor" validate:"omitempty,oneof=now latest"`
	AnalysisDate string `query:"analysis_date" validate:"isodate"`
}

func newValidation() *ValidationMiddleware {
	logger := discardLogger()
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

func TestValidationMiddleware_ValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		params     analyzeParams
		wantFields []string
	}{
		{name: "empty is valid", params: analyzeParams{}},
		{name: "all valid", params: analyzeParams{Format: "json", Anchor: "latest", AnalysisDate: "2026-01-12"}},
		{name: "bad format", params: analyzeParams{Format: "docx"}, wantFields: []string{"format"}},
		{name: "bad date", params: analyzeParams{AnalysisDate: "12/01/2026"}, wantFields: []string{"analysis_date"}},
		{name: "impossible date", params: analyzeParams{AnalysisDate: "2026-02-30"}, wantFields: []string{"analysis_date"}},
		{
			name:       "several",
			params:     analyzeParams{Format: "docx", Anchor: "yesterday"},
			wantFields: []string{"format", "anchor"},
		},
	}

	v := newValidation()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.params)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			var fields []string
			for _, fe := range details.Errors {
				fields = append(fields, fe.Field)
				assert.NotEmpty(t, fe.Message)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestValidationMiddleware_OneOfMessage(t *testing.T) {
	err := newValidation().ValidateStruct(analyzeParams{Anchor: "never"})

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	details := apiErr.Details.(apierrors.ValidationErrors)
	assert.Equal(t, "anchor must be one of: now, latest", details.Errors[0].Message)
}

func TestValidationMiddleware_ContentTypeValidator(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{"multipart", http.MethodPost, "multipart/form-data; boundary=xyz", http.StatusOK},
		{"upper case", http.MethodPost, "Multipart/Form-Data; boundary=xyz", http.StatusOK},
		{"get skips check", http.MethodGet, "", http.StatusOK},
		{"missing", http.MethodPost, "", http.StatusBadRequest},
		{"json", http.MethodPost, "application/json", http.StatusUnsupportedMediaType},
		{"malformed", http.MethodPost, "multipart/form-data; boundary", http.StatusBadRequest},
	}

	mw := newValidation().ContentTypeValidator("multipart/form-data")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/analyze", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			mw(okHandler).ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
