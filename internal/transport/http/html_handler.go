package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"saaspulse/internal/exporter"
	"saaspulse/pkg/contracts"
)

//go:embed templates/index.html
var pageFS embed.FS

var indexTemplate = template.Must(template.ParseFS(pageFS, "templates/index.html"))

type indexData struct {
	Version       string
	Formats       []string
	DefaultFormat string
	MaxUploadMB   int64
}

// ServeIndex serves the upload form
func ServeIndex(formats []string, maxUploadBytes int64, logger *slog.Logger) http.HandlerFunc {
	data := indexData{
		Version:       contracts.Version,
		Formats:       formats,
		DefaultFormat: exporter.FormatHTML,
		MaxUploadMB:   maxUploadBytes >> 20,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := indexTemplate.Execute(&buf, data); err != nil {
			logger.ErrorContext(r.Context(), "Failed to render index page", slog.String("error", err.Error()))
			http.Error(w, "Error rendering page", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(buf.Bytes())
	}
}
