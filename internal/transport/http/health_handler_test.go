package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"saaspulse/internal/services"
	"saaspulse/pkg/contracts"
)

// MockHealthService is a mock implementation of HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() contracts.VersionInfo {
	return m.Called().Get(0).(contracts.VersionInfo)
}

func TestHealthHandler_Routes(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		method     string
		status     services.HealthStatus
		wantCode   int
		wantStatus string
	}{
		{"health", "/api/health", "HealthCheck", services.HealthStatus{Status: "ok"}, http.StatusOK, "ok"},
		{"ready", "/api/health/ready", "ReadinessCheck", services.HealthStatus{Status: "ready"}, http.StatusOK, "ready"},
		{"not ready", "/api/health/ready", "ReadinessCheck", services.HealthStatus{Status: "not_ready"}, http.StatusServiceUnavailable, "not_ready"},
		{"live", "/api/health/live", "LivenessCheck", services.HealthStatus{Status: "alive"}, http.StatusOK, "alive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockHealthService{}
			tt.status.Timestamp = time.Now()
			svc.On(tt.method, mock.Anything).Return(tt.status).Once()

			r := chi.NewRouter()
			r.Mount("/api/health", NewHealthHandler(svc, testLogger()).Routes())

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var got services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantStatus, got.Status)
			svc.AssertExpectations(t)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	svc := &MockHealthService{}
	svc.On("Version").Return(contracts.GetVersionInfo())

	rec := httptest.NewRecorder()
	NewHealthHandler(svc, testLogger()).Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), contracts.Version))
}

func TestServeIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	ServeIndex([]string{"csv", "html", "xlsx"}, 10<<20, testLogger())(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, `action="/api/analyze"`)
	assert.Contains(t, body, `<option value="xlsx">xlsx</option>`)
	assert.Contains(t, body, `<option value="html" selected>html</option>`)
	assert.Contains(t, body, "max 10 MB")
}
