// Package report renders the end-of-run summary printed after a build:
// stage timings, document counts and the per-document issues grouped by
// stage.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"git.home.luguber.info/inful/bookforge/internal/state"
)

var (
	okColor    = lipgloss.Color("#10B981")
	warnColor  = lipgloss.Color("#F59E0B")
	errColor   = lipgloss.Color("#EF4444")
	mutedColor = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(okColor)
	warnStyle  = lipgloss.NewStyle().Foreground(warnColor)
	errStyle   = lipgloss.NewStyle().Foreground(errColor)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	stageStyle = lipgloss.NewStyle().Width(12)
)

// StageResult is the outcome of one executed stage.
type StageResult struct {
	Name     string
	Duration time.Duration
	Err      error // nil on success; a non-fatal export failure lands here too
	Fatal    bool
}

// Report is the aggregate outcome of one run.
type Report struct {
	BuildID   string
	StartedAt time.Time
	Duration  time.Duration
	Stages    []StageResult
	Sections  int
	Recipes   int
	Issues    []state.Issue
}

// Failed reports whether any stage ended fatally.
func (r *Report) Failed() bool {
	for _, s := range r.Stages {
		if s.Fatal {
			return true
		}
	}
	return false
}

// Render formats the report for the terminal.
func (r *Report) Render() string {
	var b strings.Builder

	status := okStyle.Render("succeeded")
	if r.Failed() {
		status = errStyle.Render("failed")
	} else if len(r.Issues) > 0 {
		status = warnStyle.Render("succeeded with issues")
	}
	fmt.Fprintf(&b, "%s %s %s\n",
		titleStyle.Render("Build "+shortID(r.BuildID)),
		status,
		mutedStyle.Render("in "+r.Duration.Round(time.Millisecond).String()))
	fmt.Fprintf(&b, "%s\n",
		mutedStyle.Render(fmt.Sprintf("%d sections, %d recipes", r.Sections, r.Recipes)))

	for _, s := range r.Stages {
		glyph := okStyle.Render("✓")
		detail := ""
		switch {
		case s.Fatal:
			glyph = errStyle.Render("✗")
			detail = " " + errStyle.Render(s.Err.Error())
		case s.Err != nil:
			glyph = warnStyle.Render("!")
			detail = " " + warnStyle.Render(s.Err.Error())
		}
		fmt.Fprintf(&b, "  %s %s %s%s\n",
			glyph,
			stageStyle.Render(s.Name),
			mutedStyle.Render(s.Duration.Round(time.Millisecond).String()),
			detail)
	}

	if len(r.Issues) > 0 {
		fmt.Fprintf(&b, "\n%s\n", titleStyle.Render(fmt.Sprintf("Issues (%d)", len(r.Issues))))
		for _, stage := range issueStages(r.Issues) {
			fmt.Fprintf(&b, "  %s\n", warnStyle.Render(stage))
			for _, is := range r.Issues {
				if is.Stage != stage {
					continue
				}
				style := warnStyle
				if is.Kind != state.IssueWarning {
					style = errStyle
				}
				fmt.Fprintf(&b, "    %s %s %s\n",
					style.Render(string(is.Kind)),
					is.Path,
					mutedStyle.Render(is.Message))
			}
		}
	}

	return b.String()
}

// issueStages lists the stages present in the issue list, in first-seen
// order so the grouping follows pipeline order.
func issueStages(issues []state.Issue) []string {
	var stages []string
	seen := map[string]struct{}{}
	for _, is := range issues {
		if _, ok := seen[is.Stage]; ok {
			continue
		}
		seen[is.Stage] = struct{}{}
		stages = append(stages, is.Stage)
	}
	return stages
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
