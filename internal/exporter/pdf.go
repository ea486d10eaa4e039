package exporter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"saaspulse/internal/config"
	"saaspulse/internal/report"
)

// PDFRenderer prints the HTML report through headless Chrome
type PDFRenderer struct {
	html       *report.HTMLRenderer
	chromePath string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewPDFRenderer creates a PDF renderer on top of the HTML report
func NewPDFRenderer(html *report.HTMLRenderer, cfg config.ExportConfig, logger *slog.Logger) *PDFRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFRenderer{
		html:       html,
		chromePath: cfg.ChromePath,
		timeout:    cfg.PDFTimeout,
		logger:     logger.With(slog.String("component", "pdf_renderer")),
	}
}

// Render implements report.Renderer
func (r *PDFRenderer) Render(ctx context.Context, w io.Writer, p *report.Payload) error {
	var doc bytes.Buffer
	if err := r.html.Render(ctx, &doc, p); err != nil {
		return err
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", true), chromedp.DisableGPU)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		loadDocument(doc.String()),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("print report to PDF: %w", err)
	}

	r.logger.DebugContext(ctx, "report printed",
		slog.String("report_id", p.ReportID),
		slog.Int("bytes", len(pdf)),
		slog.Duration("duration", time.Since(start)))

	_, err = w.Write(pdf)
	return err
}

// loadDocument replaces the current frame content with html
func loadDocument(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	})
}

// ContentType implements report.Renderer
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

// Extension implements report.Renderer
func (r *PDFRenderer) Extension() string { return "pdf" }
