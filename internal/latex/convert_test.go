package latex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertPlainText(t *testing.T) {
	nodes, warnings, err := Convert("Peel the garlic.")
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, []Node{{Kind: KindText, Text: "Peel the garlic."}}, nodes)
}

func TestConvertInlineStyles(t *testing.T) {
	nodes, _, err := Convert(`serve \textbf{very \emph{hot}}`)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	bold := nodes[1]
	require.Equal(t, KindInline, bold.Kind)
	require.Equal(t, StyleBold, bold.Style)
	require.Len(t, bold.Children, 2)
	require.Equal(t, StyleEmph, bold.Children[1].Style)
}

func TestConvertHeadings(t *testing.T) {
	nodes, _, err := Convert("\\section{Ingredients}\n\\subsection*{Dough}")
	require.NoError(t, err)

	var headings []Node
	for _, n := range nodes {
		if n.Kind == KindHeading {
			headings = append(headings, n)
		}
	}
	require.Len(t, headings, 2)
	require.Equal(t, 1, headings[0].Level)
	require.Equal(t, 2, headings[1].Level)
	require.Equal(t, "Dough", headings[1].Children[0].Text)
}

func TestConvertEnumerate(t *testing.T) {
	src := "\\begin{enumerate}\n\\item Chop.\n\\item Fry.\n\\end{enumerate}"
	nodes, warnings, err := Convert(src)
	require.NoError(t, err)
	require.Empty(t, warnings)

	list := findKind(t, nodes, KindList)
	require.True(t, list.Ordered)
	require.Len(t, list.Items, 2)
	require.Contains(t, list.Items[0][0].Text, "Chop.")
}

func TestConvertItemizeContentBeforeItemWarns(t *testing.T) {
	src := "\\begin{itemize}\nstray text\n\\item ok\n\\end{itemize}"
	nodes, warnings, err := Convert(src)
	require.NoError(t, err)
	require.NotEmpty(t, warnings)

	list := findKind(t, nodes, KindList)
	require.False(t, list.Ordered)
	require.Len(t, list.Items, 1)
}

func TestConvertNestedLists(t *testing.T) {
	src := "\\begin{enumerate}\n" +
		"\\item Prepare the dough:\n" +
		"\\begin{itemize}\n\\item flour\n\\item water\n\\end{itemize}\n" +
		"\\item Bake.\n" +
		"\\end{enumerate}"
	nodes, warnings, err := Convert(src)
	require.NoError(t, err)
	require.Empty(t, warnings)

	outer := findKind(t, nodes, KindList)
	require.True(t, outer.Ordered)
	require.Len(t, outer.Items, 2)

	// The unordered list lives inside the first item of the ordered one.
	inner := findKind(t, outer.Items[0], KindList)
	require.False(t, inner.Ordered)
	require.Len(t, inner.Items, 2)
	require.Contains(t, inner.Items[0][0].Text, "flour")
	require.Contains(t, inner.Items[1][0].Text, "water")

	// The second item is untouched by the nesting.
	require.Contains(t, outer.Items[1][0].Text, "Bake.")
}

func TestConvertMulticols(t *testing.T) {
	src := "\\begin{multicols}{3}\nFlour \\dotfill 200 g \\\\\n\\end{multicols}"
	nodes, _, err := Convert(src)
	require.NoError(t, err)

	cols := findKind(t, nodes, KindColumns)
	require.Equal(t, 3, cols.Cols)
	require.NotEmpty(t, cols.Children)
}

func TestConvertMulticolsNonNumericArgumentKept(t *testing.T) {
	src := "\\begin{multicols}{two}\ncolumn text\n\\end{multicols}"
	nodes, _, err := Convert(src)
	require.NoError(t, err)

	cols := findKind(t, nodes, KindColumns)
	require.Equal(t, 2, cols.Cols)
	require.Contains(t, cols.Children[0].Text, "two")
	require.Contains(t, cols.Children[0].Text, "column text")
}

func TestConvertMismatchedEndFails(t *testing.T) {
	_, _, err := Convert("\\begin{itemize}\n\\item a\n\\end{enumerate}")
	require.Error(t, err)
	require.IsType(t, &ConvertError{}, err)
}

func TestConvertUnterminatedEnvironmentFails(t *testing.T) {
	_, _, err := Convert("\\begin{itemize}\n\\item a\n")
	require.Error(t, err)
}

func TestConvertUnknownEnvironmentPassesThrough(t *testing.T) {
	nodes, warnings, err := Convert("\\begin{center}\nhi\n\\end{center}")
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	require.Contains(t, nodes[0].Text, `\begin{center}`)
}

func TestConvertUnknownCommandPassesThrough(t *testing.T) {
	nodes, warnings, err := Convert(`\textsc{Chef}`)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Equal(t, `\textsc{Chef}`, nodes[0].Text)
}

func TestConvertTokens(t *testing.T) {
	nodes, _, err := Convert("a~b \\\\ \\hrulefill \\newpage \\dotfill")
	require.NoError(t, err)

	var tokens []TokenKind
	for _, n := range nodes {
		if n.Kind == KindToken {
			tokens = append(tokens, n.Token)
		}
	}
	require.Equal(t, []TokenKind{TokenNbsp, TokenLineBreak, TokenRule, TokenPageBreak, TokenDotfill}, tokens)
}

func TestConvertEscapes(t *testing.T) {
	nodes, _, err := Convert(`Fish \& Chips, 100\% done, \#1`)
	require.NoError(t, err)
	require.Equal(t, "Fish & Chips, 100% done, #1", nodes[0].Text)
}

func TestConvertNicefrac(t *testing.T) {
	nodes, _, err := Convert(`\nicefrac{1}{2} cup`)
	require.NoError(t, err)
	frac := nodes[0]
	require.Equal(t, KindToken, frac.Kind)
	require.Equal(t, TokenFraction, frac.Token)
	require.Equal(t, "1", frac.Num)
	require.Equal(t, "2", frac.Den)
}

func TestConvertLayoutCommandsDropped(t *testing.T) {
	nodes, warnings, err := Convert(`\noindent\vspace{1em}text`)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, "text", nodes[0].Text)
}

func TestConvertDepthGuard(t *testing.T) {
	src := ""
	for i := 0; i < 12; i++ {
		src += `\textbf{`
	}
	src += "deep"
	for i := 0; i < 12; i++ {
		src += `}`
	}
	_, _, err := Convert(src)
	require.Error(t, err)
}

func findKind(t *testing.T, nodes []Node, kind Kind) Node {
	t.Helper()
	for _, n := range nodes {
		if n.Kind == kind {
			return n
		}
	}
	t.Fatalf("no node of kind %v", kind)
	return Node{}
}
