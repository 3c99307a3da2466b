// Package assemble renders the master book source from the preprocessed
// bodies and drives the external LaTeX compiler over it. Rendering and
// compilation failures are fatal: without the book artifact the run has
// nothing to show.
package assemble

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/bookforge/internal/config"
	"git.home.luguber.info/inful/bookforge/internal/logfields"
	"git.home.luguber.info/inful/bookforge/internal/state"
	"git.home.luguber.info/inful/bookforge/internal/templates"
)

// StageName identifies this stage in issue records and summaries.
const StageName = "assemble"

const (
	bookTexName = "book.tex"
	bookPDFName = "book.pdf"
)

// Assembler renders and compiles the book.
type Assembler struct {
	cfg      *config.Config
	buildDir string
}

// New creates an assembler over the configured build directory.
func New(cfg *config.Config) *Assembler {
	return &Assembler{cfg: cfg, buildDir: cfg.Build.OutputDir}
}

// Run renders book.tex and compiles it to book.pdf. Any failure here is
// fatal for the run.
func (a *Assembler) Run(ctx context.Context, st *state.Store) error {
	data := BuildData(a.cfg, st, time.Now())
	if len(data.Sections) == 0 {
		slog.Warn("No recipes available for assembly, rendering empty book")
	}

	if err := a.renderSource(data); err != nil {
		return err
	}

	runner := NewRunner(a.cfg.Compiler, a.buildDir)
	if !runner.Available() {
		return fmt.Errorf("latex compiler %q not found in PATH", a.cfg.Compiler)
	}
	if err := runner.Compile(ctx, bookTexName); err != nil {
		return fmt.Errorf("compile book: %w", err)
	}

	pdf := filepath.Join(a.buildDir, bookPDFName)
	if _, err := os.Stat(pdf); err != nil {
		return fmt.Errorf("compiler exited cleanly but %s is missing: %w", bookPDFName, err)
	}

	recipes := 0
	for _, sec := range data.Sections {
		recipes += len(sec.Documents)
	}
	slog.Info("Book assembled",
		logfields.Artifact(pdf),
		slog.Int("sections", len(data.Sections)),
		slog.Int("recipes", recipes))
	return nil
}

// renderSource writes book.tex from the master template.
func (a *Assembler) renderSource(data *BookData) error {
	tmpl, err := templates.Tex(templates.BookTex, a.cfg.Build.TemplateDir)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render master template: %w", err)
	}
	if err := os.MkdirAll(a.buildDir, 0o755); err != nil {
		return fmt.Errorf("create build directory: %w", err)
	}
	out := filepath.Join(a.buildDir, bookTexName)
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write book source: %w", err)
	}
	slog.Debug("Master source rendered", logfields.Path(out))
	return nil
}
