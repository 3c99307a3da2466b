package assemble

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/bookforge/internal/config"
	"git.home.luguber.info/inful/bookforge/internal/scan"
	"git.home.luguber.info/inful/bookforge/internal/state"
)

// baselinePackages are loaded unconditionally (or via style flags) by the
// master template; listing them again from recipe requirements would
// produce duplicate \usepackage lines.
var baselinePackages = map[string]struct{}{
	"fontspec": {},
	"geometry": {},
	"titlesec": {},
	"fancyhdr": {},
	"tocloft":  {},
	"makeidx":  {},
}

// Document is one recipe as the master template sees it.
type Document struct {
	Title   string
	Include string // \input target relative to the build directory
	Path    string // source path, for diagnostics
}

// Section is one chapter of the assembled book.
type Section struct {
	Name      string
	Documents []Document
}

// BookData is the full payload rendered into the master template.
type BookData struct {
	Title     string
	Subtitle  string
	Author    string
	Copyright string
	Date      string
	Packages  []string
	TOC       bool
	Index     bool
	Sections  []Section
	Recent    []Document
}

// BuildData derives the template payload from configuration and build
// state. Only recipes with a preprocessed body participate; anything that
// failed an earlier stage is simply absent from the book.
func BuildData(cfg *config.Config, st *state.Store, now time.Time) *BookData {
	data := &BookData{
		Title:     cfg.Title.Name,
		Subtitle:  cfg.Title.Subtitle,
		Author:    cfg.Authorship.Author,
		Copyright: cfg.Authorship.Copyright,
		Date:      EditionDate(now),
		Packages:  extraPackages(st.Packages),
		TOC:       cfg.StyleFlag("include_toc"),
		Index:     cfg.StyleFlag("include_index"),
	}

	dirs := make([]string, 0, len(st.Sections))
	for dir := range st.Sections {
		dirs = append(dirs, dir)
	}
	for _, dir := range scan.SortSections(dirs) {
		sec := Section{Name: st.Sections[dir]}
		for _, path := range st.SortedRecipePaths() {
			rec := st.Recipes[path]
			if rec.Section != dir || !includable(rec) {
				continue
			}
			sec.Documents = append(sec.Documents, Document{
				Title:   rec.Title,
				Include: rec.BodyPath,
				Path:    path,
			})
		}
		if len(sec.Documents) == 0 {
			continue
		}
		sortDocuments(sec.Documents)
		data.Sections = append(data.Sections, sec)
	}

	if cfg.StyleFlag("recent_appendix") {
		data.Recent = recentDocuments(st, now)
	}
	return data
}

func includable(rec *state.Recipe) bool {
	return rec.BodyPath != "" && rec.Preprocessed
}

// sortDocuments orders recipes by title, case-insensitively, with the
// source path as a stable tiebreaker.
func sortDocuments(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := strings.ToLower(docs[i].Title), strings.ToLower(docs[j].Title)
		if a != b {
			return a < b
		}
		return docs[i].Path < docs[j].Path
	})
}

// recentDocuments lists recipes modified in the current or previous
// calendar month, newest first. Months are evaluated in UTC so the list
// is stable regardless of where the build runs.
func recentDocuments(st *state.Store, now time.Time) []Document {
	now = now.UTC()
	type entry struct {
		doc Document
		at  time.Time
	}
	var entries []entry
	for _, path := range st.SortedRecipePaths() {
		rec := st.Recipes[path]
		if !includable(rec) || !inRecentWindow(rec.ModifiedAt.UTC(), now) {
			continue
		}
		entries = append(entries, entry{
			doc: Document{Title: rec.Title, Include: rec.BodyPath, Path: path},
			at:  rec.ModifiedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].at.Equal(entries[j].at) {
			return entries[i].at.After(entries[j].at)
		}
		return entries[i].doc.Path < entries[j].doc.Path
	})
	docs := make([]Document, len(entries))
	for i, e := range entries {
		docs[i] = e.doc
	}
	return docs
}

func inRecentWindow(t, now time.Time) bool {
	cy, cm, _ := now.Date()
	ty, tm, _ := t.Date()
	if ty == cy && tm == cm {
		return true
	}
	prev := now.AddDate(0, -1, -now.Day()+1) // first day of the previous month
	py, pm, _ := prev.Date()
	return ty == py && tm == pm
}

// extraPackages filters the consolidated requirement list down to the
// packages the master template does not already load, preserving order.
func extraPackages(union []string) []string {
	out := []string{}
	for _, p := range union {
		if _, ok := baselinePackages[p]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

// EditionDate formats the authorship date line, e.g. "2026 Edition - August".
func EditionDate(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d Edition - %s", t.Year(), t.Month().String())
}
