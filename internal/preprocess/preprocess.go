// Package preprocess normalizes extracted bodies before assembly by
// removing directives whose behavior the book template owns. The rewrite
// is idempotent so re-running the stage on a normalized body is a no-op.
package preprocess

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/bookforge/internal/logfields"
	"git.home.luguber.info/inful/bookforge/internal/state"
)

// StageName identifies this stage in issue records and summaries.
const StageName = "preprocess"

// layoutDirectives are removed wherever a body line consists of exactly
// one of them: the master template renders titles and page styles itself.
// Matching is exact-token and case-sensitive.
var layoutDirectives = []string{
	`\maketitle`,
	`\thispagestyle{empty}`,
}

// Preprocessor rewrites extracted bodies in place.
type Preprocessor struct {
	buildDir string
}

// New creates a preprocessor over the given build directory.
func New(buildDir string) *Preprocessor {
	return &Preprocessor{buildDir: buildDir}
}

// Run normalizes every extracted body that has not been preprocessed since
// its last extraction. I/O failures are per-recipe issues and leave the
// preprocessed flag unset.
func (p *Preprocessor) Run(st *state.Store) error {
	processed := 0
	for _, path := range st.SortedRecipePaths() {
		rec := st.Recipes[path]
		if rec.BodyPath == "" || rec.Preprocessed {
			continue
		}
		bodyPath := filepath.Join(p.buildDir, filepath.FromSlash(rec.BodyPath))
		raw, err := os.ReadFile(bodyPath)
		if err != nil {
			st.AddIssue(StageName, path, state.IssueIO, err.Error())
			continue
		}
		cleaned := RemoveLayoutDirectives(string(raw))
		if cleaned != string(raw) {
			if err := os.WriteFile(bodyPath, []byte(cleaned), 0o644); err != nil {
				st.AddIssue(StageName, path, state.IssueIO, err.Error())
				continue
			}
		}
		rec.Preprocessed = true
		processed++
	}
	slog.Info("Preprocessing complete", logfields.Count(processed))
	return nil
}

// RemoveLayoutDirectives drops lines that consist solely of a directive
// owned by the book template. Lines merely containing one of the tokens
// inside other content are left alone.
func RemoveLayoutDirectives(content string) string {
	lines := strings.Split(content, "\n")
	out := lines[:0]
	for _, line := range lines {
		if isLayoutDirective(strings.TrimSpace(line)) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isLayoutDirective(trimmed string) bool {
	for _, d := range layoutDirectives {
		if trimmed == d {
			return true
		}
	}
	return false
}
