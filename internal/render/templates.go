package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateProvider abstracts template lookup and execution.
type TemplateProvider interface {
	// ExecuteTemplate executes the named template with data.
	ExecuteTemplate(w io.Writer, name string, data interface{}) error
}

// EmbeddedTemplateProvider parses every template under baseDir once, so
// pages and fragments share their partial definitions.
type EmbeddedTemplateProvider struct {
	fs      fs.FS
	pattern string

	once sync.Once
	set  *template.Template
	err  error
}

// NewEmbeddedTemplateProvider creates a provider over fsys. Templates are
// the *.html files in baseDir.
func NewEmbeddedTemplateProvider(fsys fs.FS, baseDir string) *EmbeddedTemplateProvider {
	pattern := "*.html"
	if baseDir != "" {
		pattern = baseDir + "/" + pattern
	}
	return &EmbeddedTemplateProvider{fs: fsys, pattern: pattern}
}

// DefaultTemplates returns the provider for the dashboard's own templates.
func DefaultTemplates() *EmbeddedTemplateProvider {
	return NewEmbeddedTemplateProvider(templateFS, "templates")
}

func (p *EmbeddedTemplateProvider) load() (*template.Template, error) {
	p.once.Do(func() {
		p.set, p.err = template.New("").ParseFS(p.fs, p.pattern)
	})
	return p.set, p.err
}

// ExecuteTemplate runs a template by file or define name.
func (p *EmbeddedTemplateProvider) ExecuteTemplate(w io.Writer, name string, data interface{}) error {
	set, err := p.load()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	if set.Lookup(name) == nil {
		return fmt.Errorf("template %q not found", name)
	}
	return set.ExecuteTemplate(w, name, data)
}
