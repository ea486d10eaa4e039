package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"saaspulse/internal/analytics"
	"saaspulse/internal/config"
	apierrors "saaspulse/internal/errors"
	"saaspulse/internal/exporter"
	"saaspulse/internal/infrastructure"
	"saaspulse/internal/ingest"
	"saaspulse/internal/report"
	"saaspulse/internal/validation"
	"saaspulse/pkg/contracts/domain"
)

// ReportOptions selects the output format and analysis date of one report.
// AnalysisDate takes precedence over Anchor; empty fields use the configured
// defaults. An explicit date is the exclusive end of the current period, so
// charges on that day fall outside it. Pass the following day to include
// them, which is what the latest anchor does.
type ReportOptions struct {
	Format       string
	Anchor       string
	AnalysisDate string
}

// Upload is a CSV file received over HTTP
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// Report is an assembled payload together with the renderer chosen for it
type Report struct {
	Payload  *report.Payload
	Renderer report.Renderer
}

// Filename returns the download name of the rendered report
func (r *Report) Filename() string {
	id := r.Payload.ReportID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("saas-report-%s-%s.%s",
		r.Payload.Window.AnalysisDate.Format(ingest.DateLayout), id, r.Renderer.Extension())
}

// ReportService turns CSV uploads and files into rendered reports
type ReportService struct {
	assembler *report.Assembler
	renderers *exporter.Set
	validator *validation.FileValidator
	anchor    analytics.Anchor
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
	now       func() time.Time
	counters  reportCounters
}

// NewReportService creates a report service. metrics may be nil.
func NewReportService(
	assembler *report.Assembler,
	renderers *exporter.Set,
	validator *validation.FileValidator,
	cfg config.ReportConfig,
	metrics *infrastructure.BusinessMetrics,
	logger *slog.Logger,
) (*ReportService, error) {
	anchor, err := analytics.ParseAnchor(cfg.Anchor)
	if err != nil {
		return nil, apierrors.NewConfigError("report.anchor", err)
	}
	return &ReportService{
		assembler: assembler,
		renderers: renderers,
		validator: validator,
		anchor:    anchor,
		metrics:   metrics,
		logger:    infrastructure.WithComponent(logger, "report_service"),
		now:       time.Now,
	}, nil
}

// Analyze validates and ingests an uploaded CSV file and assembles its
// report. Client mistakes are returned as *apierrors.APIError values.
func (s *ReportService) Analyze(ctx context.Context, up Upload, opts ReportOptions) (*Report, error) {
	if err := s.validator.ValidateUpload(up.Filename, up.Size); err != nil {
		s.metrics.RecordRejectedUpload(ctx, validation.RejectionReason(err))
		return nil, clientError(err)
	}

	renderer, err := s.renderers.Lookup(opts.Format)
	if err != nil {
		return nil, clientError(err)
	}

	table, err := ingest.Read(ctx, up.Body)
	if err != nil {
		s.logger.WarnContext(ctx, "Upload could not be ingested",
			slog.String("filename", up.Filename),
			slog.String("error", err.Error()))
		return nil, clientError(err)
	}

	return s.assemble(ctx, table, renderer, opts)
}

// AnalyzeFile reads a local CSV file and assembles its report
func (s *ReportService) AnalyzeFile(ctx context.Context, path string, opts ReportOptions) (*Report, error) {
	if err := s.validator.ValidateCSVFile(path); err != nil {
		return nil, clientError(err)
	}

	renderer, err := s.renderers.Lookup(opts.Format)
	if err != nil {
		return nil, clientError(err)
	}

	table, err := ingest.ReadFile(ctx, path)
	if err != nil {
		return nil, clientError(err)
	}

	s.logger.DebugContext(ctx, "File ingested",
		slog.String("file", filepath.Base(path)),
		slog.Int("rows", table.Len()))

	return s.assemble(ctx, table, renderer, opts)
}

func (s *ReportService) assemble(ctx context.Context, table *domain.Table, renderer report.Renderer, opts ReportOptions) (*Report, error) {
	analysisDate, err := s.analysisDate(table, opts)
	if err != nil {
		return nil, err
	}

	p := s.assembler.Assemble(ctx, table, analysisDate)
	s.counters.assembled(p, s.now())
	return &Report{Payload: p, Renderer: renderer}, nil
}

// analysisDate resolves the analysis date: an explicit date wins, then the
// requested anchor, then the configured anchor. An explicit date is taken as
// midnight UTC at the start of that day.
func (s *ReportService) analysisDate(table *domain.Table, opts ReportOptions) (time.Time, error) {
	if d := strings.TrimSpace(opts.AnalysisDate); d != "" {
		t, err := time.ParseInLocation(ingest.DateLayout, d, time.UTC)
		if err != nil {
			return time.Time{}, apierrors.InvalidParameter("analysis_date", ErrInvalidAnalysisDate)
		}
		return t, nil
	}

	anchor := s.anchor
	if opts.Anchor != "" {
		a, err := analytics.ParseAnchor(opts.Anchor)
		if err != nil {
			return time.Time{}, apierrors.InvalidParameter("anchor", err)
		}
		anchor = a
	}
	return analytics.ResolveAnalysisDate(anchor, table, s.now()), nil
}

// Render writes the report with its renderer. Rendering failures are
// returned as a 500 APIError.
func (s *ReportService) Render(ctx context.Context, w io.Writer, rep *Report) error {
	if rep == nil || rep.Renderer == nil {
		return apierrors.RenderFailed(ErrNoRenderer)
	}
	if err := s.assembler.Deliver(ctx, w, rep.Payload, rep.Renderer); err != nil {
		s.counters.renderFailed.Add(1)
		return apierrors.RenderFailed(err)
	}
	return nil
}

// Stats returns the report counters
func (s *ReportService) Stats() ReportStats {
	return s.counters.snapshot()
}

// Formats returns the supported output formats
func (s *ReportService) Formats() []string {
	return s.renderers.Formats()
}
