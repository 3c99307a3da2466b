package preprocess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookforge/internal/state"
)

func TestRemoveLayoutDirectives(t *testing.T) {
	in := "\\maketitle\nPeel the garlic.\n  \\thispagestyle{empty}\nDone."
	require.Equal(t, "Peel the garlic.\nDone.", RemoveLayoutDirectives(in))
}

func TestRemoveLayoutDirectivesKeepsInlineOccurrences(t *testing.T) {
	in := "see \\maketitle for details"
	require.Equal(t, in, RemoveLayoutDirectives(in))
}

func TestRemoveLayoutDirectivesIdempotent(t *testing.T) {
	in := "\\maketitle\nbody\n\\thispagestyle{empty}\n"
	once := RemoveLayoutDirectives(in)
	require.Equal(t, once, RemoveLayoutDirectives(once))
}

func TestRunNormalizesPendingBodies(t *testing.T) {
	buildDir := t.TempDir()
	bodyRel := "bodies/a/soup.tex"
	bodyAbs := filepath.Join(buildDir, filepath.FromSlash(bodyRel))
	require.NoError(t, os.MkdirAll(filepath.Dir(bodyAbs), 0o755))
	require.NoError(t, os.WriteFile(bodyAbs, []byte("\\maketitle\nbody line\n"), 0o644))

	st := state.Load(filepath.Join(buildDir, "metadata.yml"))
	st.Recipes["a/soup.tex"] = &state.Recipe{BodyPath: bodyRel}
	st.Recipes["a/missing.tex"] = &state.Recipe{} // never extracted, skipped

	require.NoError(t, New(buildDir).Run(st))

	body, err := os.ReadFile(bodyAbs)
	require.NoError(t, err)
	require.Equal(t, "body line\n", string(body))
	require.True(t, st.Recipes["a/soup.tex"].Preprocessed)
	require.False(t, st.Recipes["a/missing.tex"].Preprocessed)
}

func TestRunMissingBodyFileIsPerRecipeIssue(t *testing.T) {
	buildDir := t.TempDir()
	st := state.Load(filepath.Join(buildDir, "metadata.yml"))
	st.Recipes["a/gone.tex"] = &state.Recipe{BodyPath: "bodies/a/gone.tex"}

	require.NoError(t, New(buildDir).Run(st))
	require.True(t, st.HasIssue(StageName, "a/gone.tex"))
	require.False(t, st.Recipes["a/gone.tex"].Preprocessed)
}

func TestRunSkipsAlreadyPreprocessed(t *testing.T) {
	buildDir := t.TempDir()
	st := state.Load(filepath.Join(buildDir, "metadata.yml"))
	st.Recipes["a/done.tex"] = &state.Recipe{BodyPath: "bodies/a/done.tex", Preprocessed: true}

	// The body file does not even exist; a preprocessed recipe is untouched.
	require.NoError(t, New(buildDir).Run(st))
	require.Empty(t, st.Issues)
}
