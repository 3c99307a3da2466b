// Package state holds the persisted build store: one record per known
// recipe source file plus the derived section map and the consolidated
// package list. Every pipeline stage reads and mutates a single Store
// value; the orchestrator persists it after each stage so a mid-run
// failure leaves resumable state behind.
package state

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/bookforge/internal/logfields"
)

// Recipe is the build record for one source file, keyed in Store.Recipes
// by its path relative to the content root.
type Recipe struct {
	Section      string    `yaml:"section"`
	ModifiedAt   time.Time `yaml:"mtime"`
	Title        string    `yaml:"title"`
	Packages     []string  `yaml:"packages"`
	BodyPath     string    `yaml:"extracted_body,omitempty"` // relative to the build dir; empty until extracted
	Preprocessed bool      `yaml:"preprocessed"`
	Changed      bool      `yaml:"changed"` // recomputed on every scan; advisory across runs
}

// Store is the aggregate build state persisted as metadata.yml.
// Unknown fields in a loaded file are ignored so newer writers stay
// readable by older binaries.
type Store struct {
	LastBuild time.Time          `yaml:"last_build,omitempty"`
	BuildID   string             `yaml:"build_id,omitempty"`
	Packages  []string           `yaml:"packages"`
	Recipes   map[string]*Recipe `yaml:"recipes"`
	Sections  map[string]string  `yaml:"sections"` // directory name -> display name

	// Issues collects per-document, non-fatal errors for the current run
	// only; it is never persisted.
	Issues []Issue `yaml:"-"`

	path string
}

// IssueKind classifies per-document issues for the end-of-run summary.
type IssueKind string

const (
	IssueIO         IssueKind = "io"
	IssueDelimiter  IssueKind = "delimiter"
	IssueConversion IssueKind = "conversion"
	IssueCompile    IssueKind = "compile"
	IssueWarning    IssueKind = "warning" // degraded, never excludes the document
)

// Issue is one per-document, non-fatal error or warning.
type Issue struct {
	Path    string
	Stage   string
	Kind    IssueKind
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s/%s]: %s", i.Path, i.Stage, i.Kind, i.Message)
}

// AddIssue records a per-document issue for the current run.
func (s *Store) AddIssue(stage, path string, kind IssueKind, msg string) {
	s.Issues = append(s.Issues, Issue{Path: path, Stage: stage, Kind: kind, Message: msg})
}

// IssuesFor returns the issues recorded by the named stage.
func (s *Store) IssuesFor(stage string) []Issue {
	var out []Issue
	for _, is := range s.Issues {
		if is.Stage == stage {
			out = append(out, is)
		}
	}
	return out
}

// HasIssue reports whether an error-grade issue (anything but a warning)
// was recorded for the given path by the given stage.
func (s *Store) HasIssue(stage, path string) bool {
	for _, is := range s.Issues {
		if is.Stage == stage && is.Path == path && is.Kind != IssueWarning {
			return true
		}
	}
	return false
}

// SortedRecipePaths returns all recipe keys in lexical order. Stages
// iterate in this order so derived output (package order, bodies on disk)
// is deterministic between runs.
func (s *Store) SortedRecipePaths() []string {
	paths := make([]string, 0, len(s.Recipes))
	for p := range s.Recipes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// newStore returns an empty store bound to path.
func newStore(path string) *Store {
	return &Store{
		Packages: []string{},
		Recipes:  map[string]*Recipe{},
		Sections: map[string]string{},
		path:     path,
	}
}

// Load reads the store from path. A missing or corrupt file yields a fresh
// empty store: corruption must never abort a build, only force a rescan.
func Load(path string) *Store {
	data, err := os.ReadFile(path)
	if err != nil {
		return newStore(path)
	}
	st := newStore(path)
	if err := yaml.Unmarshal(data, st); err != nil {
		slog.Warn("Build state corrupt, starting fresh", logfields.Path(path), logfields.Error(err))
		return newStore(path)
	}
	if st.Recipes == nil {
		st.Recipes = map[string]*Recipe{}
	}
	if st.Sections == nil {
		st.Sections = map[string]string{}
	}
	st.path = path
	return st
}

// Save persists the store atomically (temp file + rename) so a crash mid
// write cannot corrupt the previous state.
func (s *Store) Save() error {
	if s.path == "" {
		return fmt.Errorf("state store has no backing path")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal build state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write build state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace build state: %w", err)
	}
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }
