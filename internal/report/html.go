package report

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// HTMLRenderer renders the report page. Execution fails if the template
// references a field that the payload does not provide.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer parses the embedded report template
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("report.html").
		Option("missingkey=error").
		ParseFS(templateFS, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// MustHTMLRenderer is NewHTMLRenderer that panics on error
func MustHTMLRenderer() *HTMLRenderer {
	r, err := NewHTMLRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render implements Renderer
func (h *HTMLRenderer) Render(_ context.Context, w io.Writer, p *Payload) error {
	return h.execute(w, fields(p))
}

func (h *HTMLRenderer) execute(w io.Writer, data map[string]interface{}) error {
	return h.tmpl.Execute(w, data)
}

// ContentType implements Renderer
func (h *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

// Extension implements Renderer
func (h *HTMLRenderer) Extension() string { return "html" }

// JSONRenderer writes the payload as an indented JSON document
type JSONRenderer struct{}

// Render implements Renderer
func (JSONRenderer) Render(_ context.Context, w io.Writer, p *Payload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// ContentType implements Renderer
func (JSONRenderer) ContentType() string { return "application/json" }

// Extension implements Renderer
func (JSONRenderer) Extension() string { return "json" }
