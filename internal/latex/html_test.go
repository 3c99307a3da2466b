package latex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func render(t *testing.T, src string) string {
	t.Helper()
	nodes, _, err := Convert(src)
	require.NoError(t, err)
	return RenderHTML(nodes)
}

func TestRenderInlineStyles(t *testing.T) {
	html := render(t, `serve \textbf{very \emph{hot}}`)
	require.Equal(t, "serve <strong>very <em>hot</em></strong>", html)
}

func TestRenderHeadings(t *testing.T) {
	html := render(t, "\\section{Ingredients}\n\\subsection{Dough}")
	require.Contains(t, html, "<h3>Ingredients</h3>")
	require.Contains(t, html, "<h4>Dough</h4>")
}

func TestRenderLists(t *testing.T) {
	html := render(t, "\\begin{enumerate}\n\\item Chop. \\\\\n\\item Fry.\n\\end{enumerate}")
	require.Contains(t, html, "<ol>")
	require.Contains(t, html, "<li>Chop.</li>")
	require.Contains(t, html, "<li>Fry.</li>")

	html = render(t, "\\begin{itemize}\n\\item Salt\n\\end{itemize}")
	require.Contains(t, html, "<ul>")
	require.Contains(t, html, "<li>Salt</li>")
}

func TestRenderNestedLists(t *testing.T) {
	src := "\\begin{enumerate}\n" +
		"\\item Prepare the dough:\n" +
		"\\begin{itemize}\n\\item flour\n\\item water\n\\end{itemize}\n" +
		"\\item Bake.\n" +
		"\\end{enumerate}"
	html := render(t, src)

	require.Contains(t, html, "<li>Prepare the dough:")
	require.Contains(t, html, "<li>flour</li>")
	require.Contains(t, html, "<li>water</li>")
	// The inner list closes inside the outer item.
	require.Contains(t, html, "</ul>\n</li>")
	require.Contains(t, html, "<li>Bake.</li>")
}

func TestRenderIngredientColumns(t *testing.T) {
	src := "\\begin{multicols}{2}\nFlour \\dotfill 200~g \\\\\nSugar \\dotfill 100~g \\\\\n\\end{multicols}"
	html := render(t, src)

	require.Contains(t, html, `<div class="columns" style="column-count: 2">`)
	require.Contains(t, html,
		`<div class="ingredient-item"><span class="ingredient-name">Flour</span><span class="dotfill"></span><span class="ingredient-amount">200&nbsp;g</span></div>`)
	require.Contains(t, html, `<span class="ingredient-name">Sugar</span>`)
}

func TestRenderColumnLineWithoutDotfill(t *testing.T) {
	src := "\\begin{multicols}{2}\na pinch of salt \\\\\n\\end{multicols}"
	html := render(t, src)
	require.Contains(t, html, `<div class="column-line">a pinch of salt</div>`)
}

func TestRenderTokens(t *testing.T) {
	html := render(t, "\\hrulefill\n\\newpage")
	require.Contains(t, html, `<hr class="section-divider">`)
	require.Contains(t, html, `<div class="page-break"></div>`)
}

func TestRenderFraction(t *testing.T) {
	html := render(t, `\nicefrac{1}{2} cup`)
	require.Contains(t, html, `<span class="fraction"><sup>1</sup>&frasl;<sub>2</sub></span>`)
}

func TestRenderEscapingAndTypography(t *testing.T) {
	html := render(t, "tomatoes --- use ``ripe'' ones, 2 < 3")
	require.Equal(t, "tomatoes &mdash; use &ldquo;ripe&rdquo; ones, 2 &lt; 3", html)
}

func TestRenderAmpersandEscaped(t *testing.T) {
	html := render(t, `Fish \& Chips`)
	require.Equal(t, "Fish &amp; Chips", html)
}
