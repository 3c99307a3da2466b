package assemble

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookforge/internal/config"
	"git.home.luguber.info/inful/bookforge/internal/state"
	"git.home.luguber.info/inful/bookforge/internal/templates"
)

func testConfig() *config.Config {
	return &config.Config{
		Title:      config.Title{Name: "Family Cookbook", Subtitle: "Collected Recipes"},
		Authorship: config.Authorship{Author: "Jo Cook", Copyright: "2026"},
		Style: map[string]any{
			"include_toc":     true,
			"include_index":   false,
			"recent_appendix": true,
		},
		Build:    config.BuildConfig{OutputDir: "_build", HTMLOutputDir: "html", Extension: ".tex"},
		Compiler: "xelatex",
	}
}

func testStore(t *testing.T, now time.Time) *state.Store {
	t.Helper()
	st := state.Load(filepath.Join(t.TempDir(), "metadata.yml"))
	st.Sections = map[string]string{
		"01-starters": "Starters",
		"02-mains":    "Mains",
		"sides":       "Sides",
	}
	st.Packages = []string{"fontspec", "multicol", "nicefrac"}
	add := func(path, section, title string, modified time.Time) {
		st.Recipes[path] = &state.Recipe{
			Section:      section,
			Title:        title,
			ModifiedAt:   modified,
			BodyPath:     "bodies/" + path,
			Preprocessed: true,
		}
	}
	old := now.AddDate(0, -3, 0)
	add("01-starters/soup.tex", "01-starters", "garlic soup", now)
	add("01-starters/bread.tex", "01-starters", "Bread", old)
	add("02-mains/stew.tex", "02-mains", "Beef Stew", now.AddDate(0, -1, 0))
	add("sides/slaw.tex", "sides", "Slaw", old)
	return st
}

func TestBuildDataSectionOrder(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	data := BuildData(testConfig(), testStore(t, now), now)

	var names []string
	for _, s := range data.Sections {
		names = append(names, s.Name)
	}
	require.Equal(t, []string{"Starters", "Mains", "Sides"}, names)
}

func TestBuildDataDocumentOrderCaseInsensitive(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	data := BuildData(testConfig(), testStore(t, now), now)

	starters := data.Sections[0]
	require.Equal(t, "Bread", starters.Documents[0].Title)
	require.Equal(t, "garlic soup", starters.Documents[1].Title)
}

func TestBuildDataSkipsUnpreparedRecipes(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	st := testStore(t, now)
	st.Recipes["01-starters/soup.tex"].Preprocessed = false
	st.Recipes["sides/slaw.tex"].BodyPath = ""

	data := BuildData(testConfig(), st, now)
	require.Len(t, data.Sections, 2) // sides emptied out entirely
	require.Len(t, data.Sections[0].Documents, 1)
}

func TestBuildDataExtraPackages(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	data := BuildData(testConfig(), testStore(t, now), now)
	require.Equal(t, []string{"multicol", "nicefrac"}, data.Packages)
	require.True(t, data.TOC)
	require.False(t, data.Index)
}

func TestBuildDataRecentWindow(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	data := BuildData(testConfig(), testStore(t, now), now)

	// Current month and the previous calendar month qualify; older entries
	// do not. Newest first.
	require.Len(t, data.Recent, 2)
	require.Equal(t, "garlic soup", data.Recent[0].Title)
	require.Equal(t, "Beef Stew", data.Recent[1].Title)
}

func TestBuildDataRecentDisabled(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	cfg := testConfig()
	cfg.Style["recent_appendix"] = false
	data := BuildData(cfg, testStore(t, now), now)
	require.Empty(t, data.Recent)
}

func TestEditionDate(t *testing.T) {
	require.Equal(t, "2026 Edition - August",
		EditionDate(time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)))
}

func TestRecentWindowYearBoundary(t *testing.T) {
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	require.True(t, inRecentWindow(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC), now))
	require.False(t, inRecentWindow(time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC), now))
}

func TestMasterTemplateRenders(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	data := BuildData(testConfig(), testStore(t, now), now)
	data.Date = EditionDate(now)

	tmpl, err := templates.Tex(templates.BookTex, "")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, data))
	out := buf.String()

	require.Contains(t, out, `\title{Family Cookbook}`)
	require.Contains(t, out, `\usepackage{multicol}`)
	require.Contains(t, out, `\usepackage{tocloft}`)
	require.NotContains(t, out, `\usepackage{makeidx}`)
	require.Contains(t, out, `\chapter{Starters}`)
	require.Contains(t, out, `\input{bodies/01-starters/soup.tex}`)
	require.Contains(t, out, `\chapter{Recently Updated}`)
	require.Contains(t, out, "2026 Edition - August")
	require.NotContains(t, out, "<no value>")
}
