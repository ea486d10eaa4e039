package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saaspulse/internal/config"
	api "saaspulse/pkg/contracts/api/v1"
	"saaspulse/pkg/contracts/events"
)

const scenarioCSV = "customer_id,charge_date,amount\n" +
	"cus_1,2025-11-20,10000\n" +
	"cus_2,2025-11-25,10000\n" +
	"cus_2,2025-12-20,15000\n" +
	"cus_3,2026-01-05,10000\n"

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Security.RateLimit.Enabled = false
	cfg.Summary.Enabled = false
	cfg.Telemetry.Environment = "test"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *httptest.Server) {
	t.Helper()
	app, err := New(cfg, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)

	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		app.WebSocketHub.Stop()
	})
	return app, srv
}

func postCSV(t *testing.T, url, filename, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(api.UploadField, filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestNew_WiresServices(t *testing.T) {
	app, _ := newTestApp(t, testConfig())

	assert.NotNil(t, app.Services.Report)
	assert.NotNil(t, app.Services.Health)
	assert.NotNil(t, app.Metrics)
	assert.NotNil(t, app.OTelProviders.PrometheusHTTP)
	assert.Equal(t, ":0", app.Server.Addr)
	assert.Equal(t, app.Router, app.Server.Handler)
}

func TestRouter_HealthAndIndex(t *testing.T) {
	_, srv := newTestApp(t, testConfig())

	tests := []struct {
		path        string
		wantStatus  int
		contentType string
		contains    string
	}{
		{"/api/health", http.StatusOK, "application/json", `"status":"ok"`},
		{"/api/health/ready", http.StatusOK, "application/json", `"websocket"`},
		{"/api/health/live", http.StatusOK, "application/json", `"alive"`},
		{"/api/version", http.StatusOK, "application/json", `"api_version":"v1"`},
		{"/api/formats", http.StatusOK, "application/json", `"xlsx"`},
		{"/", http.StatusOK, "text/html; charset=utf-8", "Generate report"},
		{"/does-not-exist", http.StatusNotFound, "application/json", `"status":404`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), tt.contentType), resp.Header.Get("Content-Type"))
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
			assert.Contains(t, readBody(t, resp), tt.contains)
		})
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	_, srv := newTestApp(t, testConfig())

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
}

func TestRouter_AnalyzeJSON(t *testing.T) {
	_, srv := newTestApp(t, testConfig())

	resp := postCSV(t, srv.URL+"/api/analyze?format=json&analysis_date=2026-01-12", "stripe.csv", scenarioCSV)
	body := readBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "validated", resp.Header.Get(api.HeaderReportOutcome))
	assert.Equal(t, "unavailable", resp.Header.Get(api.HeaderSummaryState))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	assert.Equal(t, resp.Header.Get(api.HeaderReportID), doc["report_id"])
	revenue := doc["revenue_metrics"].(map[string]interface{})
	assert.EqualValues(t, 250, revenue["total_revenue"])
	assert.EqualValues(t, 25, revenue["revenue_change_percent"])
	assert.EqualValues(t, 3000, revenue["annualized_run_rate"])
}

func TestRouter_AnalyzeDegradedIsOK(t *testing.T) {
	_, srv := newTestApp(t, testConfig())

	resp := postCSV(t, srv.URL+"/api/analyze?analysis_date=2026-01-12", "old.csv",
		"customer_id,charge_date,amount\ncus_1,2025-09-01,1000\n")
	body := readBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "degraded", resp.Header.Get(api.HeaderReportOutcome))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inline")
	assert.Contains(t, body, "N/A")
}

func TestRouter_AnalyzeRejections(t *testing.T) {
	_, srv := newTestApp(t, testConfig())

	tests := []struct {
		name       string
		query      string
		filename   string
		content    string
		wantStatus int
		wantDetail string
	}{
		{"wrong suffix", "", "data.txt", scenarioCSV, http.StatusBadRequest, "Only CSV files supported"},
		{"missing column", "", "data.csv", "customer_id,amount\ncus_1,100\n", http.StatusBadRequest, "Invalid CSV format"},
		{"bad format", "?format=docx", "data.csv", scenarioCSV, http.StatusBadRequest, "Unsupported output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postCSV(t, srv.URL+"/api/analyze"+tt.query, tt.filename, tt.content)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &problem))
			assert.Equal(t, tt.wantDetail, problem["detail"])
		})
	}
}

func TestRouter_ReadinessCountsReports(t *testing.T) {
	_, srv := newTestApp(t, testConfig())

	resp := postCSV(t, srv.URL+"/api/analyze?format=json&analysis_date=2026-01-12", "stripe.csv", scenarioCSV)
	require.Equal(t, http.StatusOK, resp.StatusCode, readBody(t, resp))

	ready, err := http.Get(srv.URL + "/api/health/ready")
	require.NoError(t, err)
	defer ready.Body.Close()

	var status struct {
		Services map[string]struct {
			Reports struct {
				Validated int64 `json:"validated"`
				Degraded  int64 `json:"degraded"`
			} `json:"reports"`
		} `json:"services"`
	}
	require.NoError(t, json.NewDecoder(ready.Body).Decode(&status))
	assert.EqualValues(t, 1, status.Services["reports"].Reports.Validated)
	assert.EqualValues(t, 0, status.Services["reports"].Reports.Degraded)
}

func TestRouter_RateLimitPerClient(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	_, srv := newTestApp(t, cfg)

	first, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer second.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, "1", second.Header.Get("Retry-After"))
}

func TestRouter_MetricsExposeReports(t *testing.T) {
	_, srv := newTestApp(t, testConfig())

	resp := postCSV(t, srv.URL+"/api/analyze?format=csv&analysis_date=2026-01-12", "a.csv", scenarioCSV)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()

	body := readBody(t, metrics)
	assert.Contains(t, body, "reports_generated_total")
	assert.Contains(t, body, `format="csv"`)
	assert.Contains(t, body, "http_requests_total")
}

func TestRouter_WebSocketReceivesReportStates(t *testing.T) {
	_, srv := newTestApp(t, testConfig())

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg events.Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, events.MessageTypeConnect, msg.Type)

	resp := postCSV(t, srv.URL+"/api/analyze?format=json&analysis_date=2026-01-12", "a.csv", scenarioCSV)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reportID := resp.Header.Get(api.HeaderReportID)

	var states []string
	for len(states) < 4 {
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != events.MessageTypeReportState {
			continue
		}
		data := msg.Data.(map[string]interface{})
		assert.Equal(t, reportID, data["report_id"])
		states = append(states, data["state"].(string))
	}
	assert.Equal(t, []string{"validating", "metrics_ready", "summary_ready", "rendered"}, states)
}

func TestApplication_StartStop(t *testing.T) {
	cfg := testConfig()
	cfg.Server.ShutdownTimeout = time.Second
	app, err := New(cfg, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	assert.NoError(t, app.Stop(context.Background()))
	assert.Equal(t, 0, app.WebSocketHub.ClientCount())
}
