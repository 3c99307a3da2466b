// Package scan discovers recipe sources under the content root and merges
// the result into the build store. Directories not carrying the reserved
// system prefix become sections; files with the recognized extension
// beneath them become recipe records. Change detection is purely
// mtime-based.
package scan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/bookforge/internal/logfields"
	"git.home.luguber.info/inful/bookforge/internal/state"
)

// StageName identifies this stage in issue records and summaries.
const StageName = "scan"

// Scanner walks the content root and updates recipe and section records.
type Scanner struct {
	root string
	ext  string
}

// New creates a scanner for the given content root and source extension.
func New(root, ext string) *Scanner {
	if ext == "" {
		ext = ".tex"
	}
	return &Scanner{root: root, ext: ext}
}

// isSystemName reports whether a directory is reserved (hidden or build
// machinery) and therefore not a section.
func isSystemName(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// Run scans the tree and merges the result into st. Per-file I/O errors
// are recorded as issues and do not stop the scan; only an unreadable
// content root is fatal. The store's last-build timestamp is advanced only
// after the full walk succeeds.
func (s *Scanner) Run(st *state.Store) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("content root unreadable: %w", err)
	}

	sections := map[string]string{}
	seen := map[string]struct{}{}

	for _, entry := range entries {
		if !entry.IsDir() || isSystemName(entry.Name()) {
			continue
		}
		dir := entry.Name()
		sections[dir] = DisplayName(dir)
		s.scanSection(st, dir, seen)
	}

	// Records for files that vanished from disk are dropped; the package
	// union is recomputed downstream so their provenance goes with them.
	for path := range st.Recipes {
		if _, ok := seen[path]; !ok {
			slog.Debug("Recipe removed from disk, dropping record", logfields.Recipe(path))
			delete(st.Recipes, path)
		}
	}

	st.Sections = sections
	st.LastBuild = time.Now().UTC()

	changed := 0
	for _, r := range st.Recipes {
		if r.Changed {
			changed++
		}
	}
	slog.Info("Scan complete",
		slog.Int("sections", len(sections)),
		slog.Int("recipes", len(st.Recipes)),
		slog.Int("changed", changed))
	return nil
}

// scanSection merges one section directory's recipe files into the store.
func (s *Scanner) scanSection(st *state.Store, dir string, seen map[string]struct{}) {
	sectionPath := filepath.Join(s.root, dir)
	entries, err := os.ReadDir(sectionPath)
	if err != nil {
		st.AddIssue(StageName, dir, state.IssueIO, err.Error())
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), s.ext) {
			continue
		}
		rel := filepath.ToSlash(filepath.Join(dir, entry.Name()))
		info, err := entry.Info()
		if err != nil {
			st.AddIssue(StageName, rel, state.IssueIO, err.Error())
			continue
		}
		seen[rel] = struct{}{}
		s.mergeRecipe(st, rel, dir, entry.Name(), info.ModTime().UTC())
	}
}

// mergeRecipe updates or creates the record for one source file. A recipe
// is changed when it is new or its on-disk mtime is strictly newer than
// the stored one; a changed recipe loses its preprocessed status so the
// assembler cannot consume a stale body.
func (s *Scanner) mergeRecipe(st *state.Store, rel, section, filename string, mtime time.Time) {
	existing, ok := st.Recipes[rel]
	if !ok {
		st.Recipes[rel] = &state.Recipe{
			Section:    section,
			ModifiedAt: mtime,
			Title:      fallbackTitle(filename, s.ext),
			Packages:   []string{},
			Changed:    true,
		}
		return
	}

	changed := mtime.After(existing.ModifiedAt)
	existing.Section = section
	existing.ModifiedAt = mtime
	existing.Changed = changed
	if changed {
		existing.Preprocessed = false
	}
}

// fallbackTitle derives a display title from a filename when the source
// declares none: "chocolate_cake.tex" -> "Chocolate Cake".
func fallbackTitle(filename, ext string) string {
	stem := strings.TrimSuffix(filename, ext)
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.ReplaceAll(stem, "-", " ")
	return titleCaser.String(stem)
}
