package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saaspulse/internal/shared/testutil"
	"saaspulse/pkg/contracts"
)

type fixedClients int

func (f fixedClients) ClientCount() int { return int(f) }

func TestHealthService_HealthAndLiveness(t *testing.T) {
	hs := NewHealthService(fixedClients(2), true, []string{"html"}, testLogger())
	ctx := context.Background()

	health := hs.HealthCheck(ctx)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, contracts.Version, health.Version)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	assert.Equal(t, contracts.Version, hs.Version().Version)
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		clients    ClientCounter
		summary    bool
		formats    []string
		wantStatus string
		wantWS     string
	}{
		{"all ready", fixedClients(3), true, []string{"csv", "html"}, "ready", "ready"},
		{"summary disabled is still ready", fixedClients(0), false, []string{"html"}, "ready", "ready"},
		{"no websocket", nil, true, []string{"html"}, "ready", "disabled"},
		{"no formats", fixedClients(0), true, nil, "not_ready", "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService(tt.clients, tt.summary, tt.formats, nil)
			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantWS, status.Services["websocket"].(ServiceHealth).Status)
		})
	}
}

func TestHealthService_ReadinessLogsNotReady(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	hs := NewHealthService(fixedClients(0), true, nil, logger)

	status := hs.ReadinessCheck(context.Background())

	assert.Equal(t, "not_ready", status.Status)
	testutil.AssertLogged(t, logs, slog.LevelWarn, "ReadinessCheck: not ready")
}

type fixedStats ReportStats

func (f fixedStats) Stats() ReportStats { return ReportStats(f) }

func TestHealthService_ReadinessIncludesReportStats(t *testing.T) {
	hs := NewHealthService(fixedClients(1), true, []string{"html"}, nil).
		WithReportStats(fixedStats{Validated: 4, Degraded: 1})

	status := hs.ReadinessCheck(context.Background())

	reports := status.Services["reports"].(ServiceHealth)
	require.NotNil(t, reports.Reports)
	assert.EqualValues(t, 4, reports.Reports.Validated)
	assert.EqualValues(t, 5, reports.Reports.Total())
	assert.Nil(t, reports.Reports.LastReportAt)
}
