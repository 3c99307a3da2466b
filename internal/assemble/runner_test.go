package assemble

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookforge/internal/state"
)

func TestRunnerCompileSuccessRemovesIntermediates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"book.tex", "book.aux", "book.log", "book.toc", "book.out"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	// "true" stands in for the LaTeX engine: accepts any args, exits zero.
	r := NewRunner("true", dir)
	require.True(t, r.Available())
	require.NoError(t, r.Compile(context.Background(), "book.tex"))

	for _, name := range []string{"book.aux", "book.log", "book.toc", "book.out"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.True(t, os.IsNotExist(err), "%s should be removed", name)
	}
	_, err := os.Stat(filepath.Join(dir, "book.tex"))
	require.NoError(t, err)
}

func TestRunnerCompileFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "book.aux"), []byte("x"), 0o644))

	r := NewRunner("false", dir)
	err := r.Compile(context.Background(), "book.tex")
	require.Error(t, err)
	require.Contains(t, err.Error(), "pass 1")

	// Intermediates survive a failed run for debugging.
	_, statErr := os.Stat(filepath.Join(dir, "book.aux"))
	require.NoError(t, statErr)
}

func TestRunnerMissingCompiler(t *testing.T) {
	r := NewRunner("definitely-not-a-latex-engine", t.TempDir())
	require.False(t, r.Available())
}

func TestOutputTail(t *testing.T) {
	out := []byte("one\ntwo\nthree\nfour\n")
	require.Equal(t, "three\nfour", outputTail(out, 2))
	require.Equal(t, "one\ntwo\nthree\nfour", outputTail(out, 10))
}

func TestStandaloneCompilesAndSkips(t *testing.T) {
	buildDir := t.TempDir()
	cfg := testConfig()
	cfg.Build.OutputDir = buildDir
	cfg.Compiler = "true"

	st := state.Load(filepath.Join(buildDir, "metadata.yml"))
	st.Recipes["01-starters/garlic soup.tex"] = &state.Recipe{
		Section:      "01-starters",
		Title:        "Garlic Soup",
		ModifiedAt:   time.Now().Add(-time.Hour),
		Packages:     []string{"fontspec", "multicol"},
		BodyPath:     "bodies/01-starters/garlic_soup.tex",
		Preprocessed: true,
	}

	a := New(cfg)
	require.NoError(t, a.Standalone(context.Background(), st, false))
	require.Empty(t, st.Issues)

	texPath := filepath.Join(buildDir, "standalone", "01-starters_garlic_soup.tex")
	data, err := os.ReadFile(texPath)
	require.NoError(t, err)
	require.Contains(t, string(data), `\title{Garlic Soup}`)
	require.Contains(t, string(data), `\usepackage{multicol}`)
	require.Equal(t, 1, strings.Count(string(data), `\usepackage{fontspec}`))
	require.Contains(t, string(data), `\input{../bodies/01-starters/garlic_soup.tex}`)

	// A PDF newer than the source short-circuits the next run.
	pdfPath := filepath.Join(buildDir, "standalone", "01-starters_garlic_soup.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF"), 0o644))
	require.NoError(t, os.Remove(texPath))
	require.NoError(t, a.Standalone(context.Background(), st, false))
	_, err = os.Stat(texPath)
	require.True(t, os.IsNotExist(err), "skipped recipe must not be re-rendered")

	// force overrides the freshness check.
	require.NoError(t, a.Standalone(context.Background(), st, true))
	_, err = os.Stat(texPath)
	require.NoError(t, err)
}
