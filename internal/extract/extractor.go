// Package extract isolates recipe bodies and declared package requirements
// from raw LaTeX sources. Recognition is pattern based: the document
// delimiters and the \usepackage / \title directives are matched textually,
// never parsed as a grammar.
package extract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/bookforge/internal/logfields"
	"git.home.luguber.info/inful/bookforge/internal/scan"
	"git.home.luguber.info/inful/bookforge/internal/state"
	"git.home.luguber.info/inful/bookforge/internal/util/sets"
)

// StageName identifies this stage in issue records and summaries.
const StageName = "extract"

const (
	beginDocument = `\begin{document}`
	endDocument   = `\end{document}`
	pageBreak     = `\newpage`
	ornament      = `\hrulefill`
)

var (
	usepackageRe = regexp.MustCompile(`\\usepackage(?:\[[^\]]*\])?\{([^}]+)\}`)
	titleRe      = regexp.MustCompile(`\\title\{([^}]*)\}`)
)

// Extractor writes recipe bodies under <buildDir>/bodies and records the
// per-recipe package requirements.
type Extractor struct {
	root     string
	buildDir string
	force    bool
}

// New creates an extractor. When force is set every recipe is re-extracted
// regardless of its change status.
func New(root, buildDir string, force bool) *Extractor {
	return &Extractor{root: root, buildDir: buildDir, force: force}
}

// Content is the result of extracting one source file.
type Content struct {
	Body     string
	Packages []string // first-seen order
	Title    string   // empty when the source declares none
}

// Run extracts every recipe that changed, was never extracted, or whose
// body file is missing. Failures are per-recipe issues; the stage itself
// only fails when the bodies directory cannot be created. The consolidated
// package list is recomputed as a full union afterwards so removed and
// changed recipes are reflected correctly.
func (e *Extractor) Run(st *state.Store) error {
	bodiesDir := filepath.Join(e.buildDir, "bodies")
	if err := os.MkdirAll(bodiesDir, 0o755); err != nil {
		return fmt.Errorf("create bodies directory: %w", err)
	}

	for _, path := range st.SortedRecipePaths() {
		rec := st.Recipes[path]
		if !e.needsExtraction(rec) {
			continue
		}
		if err := e.extractRecipe(st, path, rec); err != nil {
			slog.Warn("Extraction failed", logfields.Recipe(path), logfields.Error(err))
		}
	}

	st.Packages = consolidatePackages(st)
	slog.Info("Extraction complete", slog.Int("packages", len(st.Packages)))
	return nil
}

func (e *Extractor) needsExtraction(rec *state.Recipe) bool {
	if e.force || rec.Changed || rec.BodyPath == "" {
		return true
	}
	_, err := os.Stat(filepath.Join(e.buildDir, filepath.FromSlash(rec.BodyPath)))
	return err != nil
}

// extractRecipe processes one source file and updates its record. The
// record's body path is set only on success; on failure the recipe stays
// excluded from assembly until the source is fixed.
func (e *Extractor) extractRecipe(st *state.Store, path string, rec *state.Recipe) error {
	raw, err := os.ReadFile(filepath.Join(e.root, filepath.FromSlash(path)))
	if err != nil {
		st.AddIssue(StageName, path, state.IssueIO, err.Error())
		return err
	}

	content, err := Parse(string(raw))
	if err != nil {
		st.AddIssue(StageName, path, state.IssueDelimiter, err.Error())
		return err
	}

	body := EnsureOrnaments(content.Body)
	bodyRel := bodyRelPath(path)
	bodyAbs := filepath.Join(e.buildDir, filepath.FromSlash(bodyRel))
	if err := os.MkdirAll(filepath.Dir(bodyAbs), 0o755); err != nil {
		st.AddIssue(StageName, path, state.IssueIO, err.Error())
		return err
	}
	if err := os.WriteFile(bodyAbs, []byte(body), 0o644); err != nil {
		st.AddIssue(StageName, path, state.IssueIO, err.Error())
		return err
	}

	rec.BodyPath = bodyRel
	rec.Packages = content.Packages
	rec.Preprocessed = false
	if content.Title != "" {
		rec.Title = content.Title
	} else {
		rec.Title = fallbackTitle(path)
	}
	return nil
}

// Parse extracts the body between the document delimiters plus the
// declared packages and title. A content-start with no matching
// content-end, or no content at all, is an extraction error.
func Parse(src string) (Content, error) {
	var c Content
	seen := sets.New[string]()

	var body strings.Builder
	inDocument := false
	sawBegin := false
	sawEnd := false

	for _, line := range strings.Split(src, "\n") {
		if m := usepackageRe.FindStringSubmatch(line); m != nil {
			c.Packages = sets.AppendMissing(seen, c.Packages, strings.TrimSpace(m[1]))
		}
		if c.Title == "" {
			if m := titleRe.FindStringSubmatch(line); m != nil {
				c.Title = strings.TrimSpace(m[1])
			}
		}

		switch {
		case strings.Contains(line, beginDocument):
			inDocument = true
			sawBegin = true
		case strings.Contains(line, endDocument):
			inDocument = false
			sawEnd = true
		case inDocument:
			body.WriteString(line)
			body.WriteString("\n")
		}
	}

	if sawBegin && !sawEnd {
		return c, fmt.Errorf("unterminated document: %s without matching %s", beginDocument, endDocument)
	}
	c.Body = strings.TrimSpace(body.String())
	if c.Body == "" {
		return c, fmt.Errorf("no content found between document delimiters")
	}
	return c, nil
}

// EnsureOrnaments inserts an ornamental separator immediately before each
// page-break directive unless one is already there. Idempotent: running it
// on already-ornamented content changes nothing.
func EnsureOrnaments(body string) string {
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == pageBreak && !endsWithOrnament(out) {
			out = append(out, ornament)
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// endsWithOrnament reports whether the last non-blank emitted line is the
// separator ornament.
func endsWithOrnament(lines []string) bool {
	for i := len(lines) - 1; i >= 0; i-- {
		t := strings.TrimSpace(lines[i])
		if t == "" {
			continue
		}
		return t == ornament
	}
	return false
}

// consolidatePackages recomputes the global package list as the
// deduplicated union over all current recipes, first-seen order with
// recipes visited in sorted path order for stability across rebuilds.
func consolidatePackages(st *state.Store) []string {
	seen := sets.New[string]()
	union := []string{}
	for _, path := range st.SortedRecipePaths() {
		union = sets.AppendMissing(seen, union, st.Recipes[path].Packages...)
	}
	return union
}

// bodyRelPath mirrors the source path under bodies/, with spaces in path
// components replaced so the LaTeX \input path stays quoting-free.
func bodyRelPath(recipePath string) string {
	safe := strings.ReplaceAll(recipePath, " ", "_")
	return "bodies/" + safe
}

func fallbackTitle(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.ReplaceAll(stem, "-", " ")
	return scan.TitleCase(stem)
}
