package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the embedded HTML templates.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

type overlayStaticFS struct {
	override http.FileSystem
	embedded http.FileSystem
}

// NewStaticFS serves the embedded assets. When overrideDir is set, files found
// there take precedence.
func NewStaticFS(overrideDir string) (http.FileSystem, error) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	embedded := http.FS(sub)
	if strings.TrimSpace(overrideDir) == "" {
		return embedded, nil
	}
	return &overlayStaticFS{override: gin.Dir(overrideDir, false), embedded: embedded}, nil
}

func (o *overlayStaticFS) Open(name string) (http.File, error) {
	if file, err := o.override.Open(name); err == nil {
		return file, nil
	}
	return o.embedded.Open(name)
}
