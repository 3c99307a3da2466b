package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookforge/internal/state"
)

func sample() *Report {
	return &Report{
		BuildID:  "0f8fad5b-d9cb-469f-a165-70867728950e",
		Duration: 1234 * time.Millisecond,
		Sections: 3,
		Recipes:  12,
		Stages: []StageResult{
			{Name: "scan", Duration: 10 * time.Millisecond},
			{Name: "extract", Duration: 20 * time.Millisecond},
		},
	}
}

func TestRenderSuccess(t *testing.T) {
	out := sample().Render()
	require.Contains(t, out, "Build 0f8fad5b")
	require.Contains(t, out, "succeeded")
	require.Contains(t, out, "3 sections, 12 recipes")
	require.Contains(t, out, "scan")
	require.Contains(t, out, "extract")
	require.NotContains(t, out, "Issues")
}

func TestRenderWithIssuesGroupsByStage(t *testing.T) {
	r := sample()
	r.Issues = []state.Issue{
		{Stage: "extract", Path: "a/broken.tex", Kind: state.IssueDelimiter, Message: "unterminated document"},
		{Stage: "export", Path: "a/odd.tex", Kind: state.IssueWarning, Message: "unrecognized directive"},
		{Stage: "extract", Path: "a/other.tex", Kind: state.IssueIO, Message: "permission denied"},
	}
	out := r.Render()
	require.Contains(t, out, "Issues (3)")
	require.Contains(t, out, "a/broken.tex")
	require.Contains(t, out, "unterminated document")
	require.Contains(t, out, "succeeded with issues")
}

func TestRenderFailedStage(t *testing.T) {
	r := sample()
	r.Stages = append(r.Stages, StageResult{
		Name:     "assemble",
		Duration: 5 * time.Millisecond,
		Err:      errors.New("xelatex pass 1 failed"),
		Fatal:    true,
	})
	require.True(t, r.Failed())
	out := r.Render()
	require.Contains(t, out, "failed")
	require.Contains(t, out, "xelatex pass 1 failed")
}
