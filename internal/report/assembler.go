package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"saaspulse/internal/analytics"
	apierrors "saaspulse/internal/errors"
	"saaspulse/internal/infrastructure"
	"saaspulse/internal/summary"
	"saaspulse/pkg/contracts/domain"
)

// State is a step of report generation
type State string

const (
	StateValidating       State = "validating"
	StateMetricsReady     State = "metrics_ready"
	StateValidationFailed State = "validation_failed"
	StateSummaryReady     State = "summary_ready"
	StateRendered         State = "rendered"
)

// StateEvent describes one state transition
type StateEvent struct {
	ReportID string
	State    State
	Outcome  string
	Reason   string
	Rows     int
}

// Observer is notified of state transitions
type Observer interface {
	OnState(ctx context.Context, ev StateEvent)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, ev StateEvent)

// OnState implements Observer
func (f ObserverFunc) OnState(ctx context.Context, ev StateEvent) { f(ctx, ev) }

// Renderer writes a payload in one output format
type Renderer interface {
	Render(ctx context.Context, w io.Writer, p *Payload) error
	ContentType() string
	Extension() string
}

// Assembler turns a canonical table into a report payload: it validates the
// table, computes metrics or placeholders, and obtains the summary text.
type Assembler struct {
	summarizer summary.Summarizer
	observer   Observer
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *infrastructure.BusinessMetrics
	now        func() time.Time
}

// Option configures an Assembler
type Option func(*Assembler)

// WithObserver registers an observer for state transitions
func WithObserver(o Observer) Option {
	return func(a *Assembler) { a.observer = o }
}

// WithTracer sets the tracer used for report spans
func WithTracer(t trace.Tracer) Option {
	return func(a *Assembler) { a.tracer = t }
}

// WithMetrics sets the instruments updated per report
func WithMetrics(m *infrastructure.BusinessMetrics) Option {
	return func(a *Assembler) { a.metrics = m }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// NewAssembler creates an Assembler
func NewAssembler(s summary.Summarizer, logger *slog.Logger, opts ...Option) *Assembler {
	a := &Assembler{
		summarizer: s,
		logger:     infrastructure.WithComponent(logger, "report.assembler"),
		tracer:     tracenoop.NewTracerProvider().Tracer(""),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the payload for table at analysisDate (zero means now). It
// never fails: a table that does not pass validation yields a Degraded
// outcome with the fixed fallback summary, and a summarizer failure yields
// the unavailable summary.
func (a *Assembler) Assemble(ctx context.Context, table *domain.Table, analysisDate time.Time) *Payload {
	started := time.Now()
	now := a.now().UTC()
	if analysisDate.IsZero() {
		analysisDate = now
	}

	p := &Payload{
		ReportID:    uuid.NewString(),
		GeneratedAt: now,
		Window:      analytics.NewWindow(analysisDate),
		Rows:        table.Len(),
		Fingerprint: Fingerprint(table),
		started:     started,
	}

	ctx = infrastructure.WithReportID(ctx, p.ReportID)
	ctx, span := a.tracer.Start(ctx, "report.assemble", trace.WithAttributes(
		attribute.String("report.id", p.ReportID),
		attribute.Int("report.rows", p.Rows),
	))
	defer span.End()

	a.emit(ctx, p, StateValidating)

	if err := analytics.Validate(table, p.Window.AnalysisDate); err != nil {
		var ve *analytics.ValidationError
		if !errors.As(err, &ve) {
			ve = &analytics.ValidationError{Reason: analytics.Reason(err.Error())}
		}
		p.Outcome = Degraded{Reason: ve}
		p.Summary = FallbackSummary
		p.SummaryState = SummaryFallback

		a.logger.InfoContext(ctx, "validation failed, rendering degraded report",
			slog.String("reason", string(ve.Reason)),
			slog.Any("missing", ve.Missing),
			slog.Int("rows", p.Rows))
		span.SetAttributes(attribute.String("report.outcome", "degraded"))
		a.emit(ctx, p, StateValidationFailed)
		a.metrics.RecordSummary(ctx, "skipped")
		a.emit(ctx, p, StateSummaryReady)
		return p
	}

	p.Outcome = Validated{
		Customers: analytics.ComputeCustomerMetrics(table, p.Window.AnalysisDate),
		Revenue:   analytics.ComputeRevenueMetrics(table, p.Window.AnalysisDate),
	}
	span.SetAttributes(attribute.String("report.outcome", "validated"))
	a.logger.DebugContext(ctx, "metrics computed", slog.String("window", p.Window.String()))
	a.emit(ctx, p, StateMetricsReady)

	text, err := a.summarize(ctx, p)
	if err != nil {
		p.Summary = UnavailableSummary
		p.SummaryState = SummaryUnavailable
		a.logger.WarnContext(ctx, "summary unavailable", slog.String("error", err.Error()))
		a.metrics.RecordSummary(ctx, "unavailable")
	} else {
		p.Summary = text
		p.SummaryState = SummaryGenerated
		a.metrics.RecordSummary(ctx, "generated")
	}
	a.emit(ctx, p, StateSummaryReady)

	return p
}

func (a *Assembler) summarize(ctx context.Context, p *Payload) (string, error) {
	ctx, span := a.tracer.Start(ctx, "report.summarize")
	defer span.End()

	body, err := json.Marshal(p.metrics())
	if err != nil {
		return "", fmt.Errorf("encode summary payload: %w", err)
	}

	text, err := a.summarizer.Summarize(ctx, body)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return "", err
	}
	return text, nil
}

// Deliver renders p with r and records the finished report
func (a *Assembler) Deliver(ctx context.Context, w io.Writer, p *Payload, r Renderer) error {
	ctx = infrastructure.WithReportID(ctx, p.ReportID)
	ctx, span := a.tracer.Start(ctx, "report.render", trace.WithAttributes(
		attribute.String("report.id", p.ReportID),
		attribute.String("report.format", r.Extension()),
	))
	defer span.End()

	if err := r.Render(ctx, w, p); err != nil {
		infrastructure.RecordError(ctx, err)
		a.logger.ErrorContext(ctx, "report rendering failed",
			slog.String("format", r.Extension()),
			slog.String("error", err.Error()))
		return apierrors.NewRenderError(r.Extension(), err).WithContext("report_id", p.ReportID)
	}

	a.metrics.RecordReport(ctx, p.Outcome.Kind(), r.Extension(), p.Rows, time.Since(p.started))
	a.emit(ctx, p, StateRendered)
	return nil
}

func (a *Assembler) emit(ctx context.Context, p *Payload, s State) {
	if a.observer == nil {
		return
	}
	ev := StateEvent{ReportID: p.ReportID, State: s, Rows: p.Rows}
	if p.Outcome != nil {
		ev.Outcome = p.Outcome.Kind()
	}
	if reason := p.Reason(); reason != nil {
		ev.Reason = string(reason.Reason)
	}
	a.observer.OnState(ctx, ev)
}
