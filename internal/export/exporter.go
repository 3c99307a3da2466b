// Package export renders the HTML edition of the book: every recipe body
// is converted from its source markup to HTML and flowed into a single
// self-contained page. Conversion failures exclude the affected recipe
// only; the page always comes out.
package export

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/bookforge/internal/assemble"
	"git.home.luguber.info/inful/bookforge/internal/config"
	"git.home.luguber.info/inful/bookforge/internal/latex"
	"git.home.luguber.info/inful/bookforge/internal/logfields"
	"git.home.luguber.info/inful/bookforge/internal/scan"
	"git.home.luguber.info/inful/bookforge/internal/state"
	"git.home.luguber.info/inful/bookforge/internal/templates"
)

// StageName identifies this stage in issue records and summaries.
const StageName = "export"

const pageName = "book.html"

// Document is one recipe on the exported page.
type Document struct {
	Title string
	Body  htmltemplate.HTML
}

// Section groups the documents of one section directory.
type Section struct {
	Name      string
	Documents []Document
}

// PageData is the payload for the page template.
type PageData struct {
	Title    string
	Subtitle string
	Author   string
	Date     string
	Intro    htmltemplate.HTML
	Sections []Section
}

// Exporter renders the HTML edition into <build_dir>/<html_output_dir>.
type Exporter struct {
	cfg      *config.Config
	buildDir string
}

// New creates an exporter over the configured build directory.
func New(cfg *config.Config) *Exporter {
	return &Exporter{cfg: cfg, buildDir: cfg.Build.OutputDir}
}

// Run converts every preprocessed recipe and writes the page. Conversion
// and per-recipe I/O failures become issues with a visible placeholder in
// the output; only template or output I/O failures abort the stage.
func (e *Exporter) Run(st *state.Store) error {
	data := PageData{
		Title:    e.cfg.Title.Name,
		Subtitle: e.cfg.Title.Subtitle,
		Author:   e.cfg.Authorship.Author,
		Date:     editionDate(st),
		Intro:    e.renderIntro(st),
	}

	converted, failed := 0, 0
	dirs := make([]string, 0, len(st.Sections))
	for dir := range st.Sections {
		dirs = append(dirs, dir)
	}
	for _, dir := range scan.SortSections(dirs) {
		sec := Section{Name: st.Sections[dir]}
		for _, path := range st.SortedRecipePaths() {
			rec := st.Recipes[path]
			if rec.Section != dir || rec.BodyPath == "" || !rec.Preprocessed {
				continue
			}
			body, ok := e.convertRecipe(st, path, rec)
			if ok {
				converted++
			} else {
				failed++
			}
			sec.Documents = append(sec.Documents, Document{Title: rec.Title, Body: body})
		}
		if len(sec.Documents) == 0 {
			continue
		}
		sortDocuments(sec.Documents)
		data.Sections = append(data.Sections, sec)
	}

	if err := e.renderPage(data); err != nil {
		return err
	}
	slog.Info("HTML edition exported",
		slog.Int("converted", converted),
		slog.Int("failed", failed))
	return nil
}

// convertRecipe converts one body to HTML. On failure the recipe stays on
// the page with a placeholder so its absence is visible, and the issue
// carries the reason.
func (e *Exporter) convertRecipe(st *state.Store, path string, rec *state.Recipe) (htmltemplate.HTML, bool) {
	raw, err := os.ReadFile(filepath.Join(e.buildDir, filepath.FromSlash(rec.BodyPath)))
	if err != nil {
		st.AddIssue(StageName, path, state.IssueIO, err.Error())
		return placeholder(), false
	}

	nodes, warnings, err := latex.Convert(string(raw))
	for _, w := range warnings {
		st.AddIssue(StageName, path, state.IssueWarning, w)
	}
	if err != nil {
		var cerr *latex.ConvertError
		msg := err.Error()
		if errors.As(err, &cerr) {
			msg = cerr.Reason
		}
		st.AddIssue(StageName, path, state.IssueConversion, msg)
		slog.Warn("Conversion failed, recipe excluded from export",
			logfields.Recipe(path), logfields.Error(err))
		return placeholder(), false
	}
	return htmltemplate.HTML(latex.RenderHTML(nodes)), true
}

func placeholder() htmltemplate.HTML {
	return `<p class="conversion-failed">This recipe could not be converted for the web edition.</p>`
}

// renderIntro converts the optional markdown introduction. A missing or
// unconvertible file degrades to no intro.
func (e *Exporter) renderIntro(st *state.Store) htmltemplate.HTML {
	if e.cfg.Introduction == "" {
		return ""
	}
	raw, err := os.ReadFile(e.cfg.Introduction)
	if err != nil {
		st.AddIssue(StageName, e.cfg.Introduction, state.IssueIO, err.Error())
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert(raw, &buf); err != nil {
		st.AddIssue(StageName, e.cfg.Introduction, state.IssueConversion, err.Error())
		return ""
	}
	return htmltemplate.HTML(buf.String())
}

func (e *Exporter) renderPage(data PageData) error {
	tmpl, err := templates.HTML(templates.BookHTML, e.cfg.Build.TemplateDir)
	if err != nil {
		return err
	}
	outDir := filepath.Join(e.buildDir, e.cfg.Build.HTMLOutputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create html output directory: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render page template: %w", err)
	}
	out := filepath.Join(outDir, pageName)
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write html edition: %w", err)
	}
	slog.Debug("Page written", logfields.Artifact(out))
	return nil
}

func editionDate(st *state.Store) string {
	if st.LastBuild.IsZero() {
		return ""
	}
	return assemble.EditionDate(st.LastBuild)
}

// sortDocuments mirrors the print ordering: by title, case-insensitively.
func sortDocuments(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return strings.ToLower(docs[i].Title) < strings.ToLower(docs[j].Title)
	})
}
