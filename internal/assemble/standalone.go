package assemble

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/bookforge/internal/logfields"
	"git.home.luguber.info/inful/bookforge/internal/state"
	"git.home.luguber.info/inful/bookforge/internal/templates"
)

// StandaloneData is the payload for the single-recipe template.
type StandaloneData struct {
	Title    string
	Author   string
	Packages []string
	Include  string
}

// Standalone compiles each preprocessed recipe into its own PDF under
// <build_dir>/standalone. A recipe is skipped when its PDF is already
// newer than the source unless force is set. Per-recipe compile failures
// are issues, never fatal.
func (a *Assembler) Standalone(ctx context.Context, st *state.Store, force bool) error {
	outDir := filepath.Join(a.buildDir, "standalone")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create standalone directory: %w", err)
	}

	tmpl, err := templates.Tex(templates.StandaloneTex, a.cfg.Build.TemplateDir)
	if err != nil {
		return err
	}
	runner := NewRunner(a.cfg.Compiler, outDir)
	if !runner.Available() {
		return fmt.Errorf("latex compiler %q not found in PATH", a.cfg.Compiler)
	}

	compiled, skipped := 0, 0
	for _, recipePath := range st.SortedRecipePaths() {
		rec := st.Recipes[recipePath]
		if !includable(rec) {
			continue
		}

		slug := standaloneSlug(recipePath)
		pdfPath := filepath.Join(outDir, slug+".pdf")
		if !force {
			if info, err := os.Stat(pdfPath); err == nil && info.ModTime().After(rec.ModifiedAt) {
				skipped++
				continue
			}
		}

		data := StandaloneData{
			Title:    rec.Title,
			Author:   a.cfg.Authorship.Author,
			Packages: extraPackages(rec.Packages),
			// The runner works inside standalone/, bodies live one level up.
			Include: path.Join("..", rec.BodyPath),
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			st.AddIssue(StageName, recipePath, state.IssueCompile, err.Error())
			continue
		}
		texName := slug + ".tex"
		if err := os.WriteFile(filepath.Join(outDir, texName), buf.Bytes(), 0o644); err != nil {
			st.AddIssue(StageName, recipePath, state.IssueIO, err.Error())
			continue
		}
		if err := runner.Compile(ctx, texName); err != nil {
			st.AddIssue(StageName, recipePath, state.IssueCompile, err.Error())
			slog.Warn("Standalone compile failed", logfields.Recipe(recipePath), logfields.Error(err))
			continue
		}
		compiled++
	}

	slog.Info("Standalone compilation complete",
		slog.Int("compiled", compiled),
		slog.Int("skipped", skipped))
	return nil
}

// standaloneSlug flattens a recipe path into a single file name:
// "01-starters/garlic soup.tex" -> "01-starters_garlic_soup".
func standaloneSlug(recipePath string) string {
	s := strings.TrimSuffix(recipePath, filepath.Ext(recipePath))
	s = strings.ReplaceAll(s, "/", "_")
	return strings.ReplaceAll(s, " ", "_")
}
