package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "saaspulse/internal/errors"
	"saaspulse/internal/exporter"
	"saaspulse/internal/middleware"
	"saaspulse/internal/services"
	api "saaspulse/pkg/contracts/api/v1"
)

// multipartOverhead allows for multipart boundaries and part headers on top
// of the file size limit
const multipartOverhead = 64 << 10

// ReportServiceInterface defines the report operations used by the handler
type ReportServiceInterface interface {
	Analyze(ctx context.Context, up services.Upload, opts services.ReportOptions) (*services.Report, error)
	Render(ctx context.Context, w io.Writer, rep *services.Report) error
	Formats() []string
}

// ReportHandler serves report generation requests
type ReportHandler struct {
	service        ReportServiceInterface
	validator      *middleware.ValidationMiddleware
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	service ReportServiceInterface,
	validator *middleware.ValidationMiddleware,
	errorHandler *apierrors.ErrorHandler,
	maxUploadBytes int64,
	logger *slog.Logger,
) *ReportHandler {
	return &ReportHandler{
		service:        service,
		validator:      validator,
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "report_handler")),
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.validator.ContentTypeValidator("multipart/form-data")).Post("/analyze", h.Analyze)
	r.Get("/formats", h.Formats)

	return r
}

// Analyze handles POST /api/analyze. The report is rendered into memory
// first so a renderer failure still produces a problem response.
func (h *ReportHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := api.AnalyzeRequestFromQuery(r.URL.Query())
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}
	file, header, err := r.FormFile(api.UploadField)
	if err != nil {
		h.errorHandler.HandleError(w, r, uploadError(err))
		return
	}
	defer file.Close()

	rep, err := h.service.Analyze(ctx, services.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	}, services.ReportOptions{
		Format:       req.Format,
		Anchor:       req.Anchor,
		AnalysisDate: req.AnalysisDate,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.Render(ctx, &buf, rep); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", rep.Renderer.ContentType())
	w.Header().Set("Content-Disposition", contentDisposition(rep))
	w.Header().Set(api.HeaderReportID, rep.Payload.ReportID)
	w.Header().Set(api.HeaderReportOutcome, rep.Payload.Outcome.Kind())
	w.Header().Set(api.HeaderSummaryState, string(rep.Payload.SummaryState))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(ctx, "Failed to write report response",
			slog.String("report_id", rep.Payload.ReportID),
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Report delivered",
		slog.String("report_id", rep.Payload.ReportID),
		slog.String("format", rep.Renderer.Extension()),
		slog.String("outcome", rep.Payload.Outcome.Kind()),
		slog.Int("rows", rep.Payload.Rows),
		slog.Int("bytes", buf.Len()))
}

// Formats handles GET /api/formats
func (h *ReportHandler) Formats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.FormatsResponse{
		Formats: h.service.Formats(),
		Default: exporter.FormatHTML,
	})
}

// contentDisposition shows HTML inline and downloads every other format
func contentDisposition(rep *services.Report) string {
	disposition := "attachment"
	if rep.Renderer.Extension() == exporter.FormatHTML {
		disposition = "inline"
	}
	return mime.FormatMediaType(disposition, map[string]string{"filename": rep.Filename()})
}

func uploadError(err error) error {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return apierrors.ErrPayloadTooLarge
	case errors.Is(err, http.ErrMissingFile):
		return apierrors.MissingUpload(api.UploadField)
	default:
		return apierrors.InvalidRequestWithError(err)
	}
}
