package services

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"time"

	"saaspulse/internal/infrastructure"
	"saaspulse/pkg/contracts"
)

// ClientCounter reports the number of connected live-feed clients
type ClientCounter interface {
	ClientCount() int
}

// ReportStatsSource exposes report counters to the readiness probe
type ReportStatsSource interface {
	Stats() ReportStats
}

// HealthService provides health check functionality
type HealthService struct {
	version        string
	clients        ClientCounter
	reports        ReportStatsSource
	summaryEnabled bool
	formats        []string
	startTime      time.Time
	logger         *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`

	Reports *ReportStats `json:"reports,omitempty"`
}

// NewHealthService creates a health service. clients may be nil when the
// live feed is not mounted.
func NewHealthService(clients ClientCounter, summaryEnabled bool, formats []string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:        contracts.Version,
		clients:        clients,
		summaryEnabled: summaryEnabled,
		formats:        formats,
		startTime:      time.Now(),
		logger:         infrastructure.WithComponent(logger, "health_service"),
	}
}

// WithReportStats adds the report counters to readiness output
func (hs *HealthService) WithReportStats(src ReportStatsSource) *HealthService {
	hs.reports = src
	return hs
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"reports":   hs.checkReportHealth(),
			"summary":   hs.checkSummaryHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status == "not_ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready", slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

func (hs *HealthService) checkReportHealth() ServiceHealth {
	if len(hs.formats) == 0 {
		return ServiceHealth{Status: "not_ready", Message: "no output formats registered"}
	}
	h := ServiceHealth{Status: "ready", Message: "formats: " + strings.Join(hs.formats, ", ")}
	if hs.reports != nil {
		stats := hs.reports.Stats()
		h.Reports = &stats
	}
	return h
}

// checkSummaryHealth never fails readiness: reports render without summaries.
func (hs *HealthService) checkSummaryHealth() ServiceHealth {
	if !hs.summaryEnabled {
		return ServiceHealth{Status: "disabled", Message: "summaries are not requested"}
	}
	return ServiceHealth{Status: "ready", Message: "summary service configured"}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{Status: "disabled"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: strconv.Itoa(hs.clients.ClientCount()) + " clients connected",
		Uptime:  time.Since(hs.startTime).Round(time.Second).String(),
	}
}
