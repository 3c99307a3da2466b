// Package templates holds the embedded master templates and resolves
// per-project overrides from the configured template directory. An
// override file with the same name as an embedded template replaces it
// wholesale.
package templates

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	texttemplate "text/template"
)

//go:embed book.tex.tmpl standalone.tex.tmpl book.html.tmpl
var embedded embed.FS

const (
	BookTex       = "book.tex.tmpl"
	StandaloneTex = "standalone.tex.tmpl"
	BookHTML      = "book.html.tmpl"
)

// source returns the template text, preferring a file named like the
// embedded template inside templateDir.
func source(name, templateDir string) (string, error) {
	if templateDir != "" {
		override := filepath.Join(templateDir, name)
		if data, err := os.ReadFile(override); err == nil {
			return string(data), nil
		}
	}
	data, err := embedded.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("embedded template %s: %w", name, err)
	}
	return string(data), nil
}

// Tex parses a LaTeX template. Missing keys are render errors so a
// template referring to absent data fails loudly instead of emitting
// "<no value>" into the book source.
func Tex(name, templateDir string) (*texttemplate.Template, error) {
	src, err := source(name, templateDir)
	if err != nil {
		return nil, err
	}
	tmpl, err := texttemplate.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// HTML parses the export page template. Recipe bodies are pre-rendered
// fragments and flow through as template.HTML; everything else is
// escaped contextually.
func HTML(name, templateDir string) (*htmltemplate.Template, error) {
	src, err := source(name, templateDir)
	if err != nil {
		return nil, err
	}
	tmpl, err := htmltemplate.New(name).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return tmpl, nil
}
