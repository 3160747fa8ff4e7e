// Package web renders the blog's HTML pages: the listing, the post page and
// the error pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
)

//go:embed templates/*.html
var templatesFS embed.FS

const htmlContentType = "text/html; charset=utf-8"

// Templates holds the parsed HTML templates for the web interface.
type Templates struct {
	templates *template.Template
}

// NewTemplates creates a new Templates instance by parsing all embedded templates.
func NewTemplates() (*Templates, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Templates{templates: tmpl}, nil
}

// Execute renders a named template into memory so the result can be cached.
func (t *Templates) Execute(name string, data interface{}) ([]byte, error) {
	tmpl := t.templates.Lookup(name)
	if tmpl == nil {
		return nil, fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Render renders a named template with the provided data and status.
// Nothing is written when rendering fails.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, data interface{}) error {
	body, err := t.Execute(name, data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// ProjectStaticFileServer returns an http.Handler that serves /static/ from staticDir.
func ProjectStaticFileServer(staticDir string) http.Handler {
	absPath, err := filepath.Abs(staticDir)
	if err != nil {
		panic(fmt.Sprintf("failed to get absolute path for static directory: %v", err))
	}
	return http.StripPrefix("/static/", http.FileServer(http.Dir(absPath)))
}
