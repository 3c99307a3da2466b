package latex

import (
	"fmt"
	"strings"
)

// RenderHTML renders a converted node tree as an HTML fragment. The
// fragment references only class names defined by the export template's
// inlined stylesheet; it carries no external resources.
func RenderHTML(nodes []Node) string {
	var b strings.Builder
	renderNodes(&b, nodes)
	return strings.TrimSpace(b.String())
}

func renderNodes(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		renderNode(b, n)
	}
}

func renderNode(b *strings.Builder, n Node) {
	switch n.Kind {
	case KindText:
		b.WriteString(escapeText(n.Text))

	case KindInline:
		tag := "em"
		if n.Style == StyleBold {
			tag = "strong"
		}
		fmt.Fprintf(b, "<%s>", tag)
		renderNodes(b, n.Children)
		fmt.Fprintf(b, "</%s>", tag)

	case KindHeading:
		// Document headings sit below the per-recipe <h2> emitted by the
		// export template, hence h3/h4.
		tag := "h3"
		if n.Level == 2 {
			tag = "h4"
		}
		fmt.Fprintf(b, "\n<%s>", tag)
		renderNodes(b, n.Children)
		fmt.Fprintf(b, "</%s>\n", tag)

	case KindList:
		tag := "ul"
		if n.Ordered {
			tag = "ol"
		}
		fmt.Fprintf(b, "\n<%s>\n", tag)
		for _, item := range n.Items {
			b.WriteString("    <li>")
			renderNodes(b, trimItem(item))
			b.WriteString("</li>\n")
		}
		fmt.Fprintf(b, "</%s>\n", tag)

	case KindColumns:
		fmt.Fprintf(b, "\n<div class=\"columns\" style=\"column-count: %d\">\n", n.Cols)
		renderColumnLines(b, n.Children)
		b.WriteString("</div>\n")

	case KindToken:
		renderToken(b, n)
	}
}

func renderToken(b *strings.Builder, n Node) {
	switch n.Token {
	case TokenRule:
		b.WriteString("\n<hr class=\"section-divider\">\n")
	case TokenPageBreak:
		b.WriteString("\n<div class=\"page-break\"></div>\n")
	case TokenDotfill:
		b.WriteString(`<span class="dotfill"></span>`)
	case TokenLineBreak:
		b.WriteString("<br>\n")
	case TokenNbsp:
		b.WriteString("&nbsp;")
	case TokenFraction:
		// Stacked numerator/denominator, never a precomposed glyph.
		fmt.Fprintf(b, `<span class="fraction"><sup>%s</sup>&frasl;<sub>%s</sub></span>`,
			escapeText(n.Num), escapeText(n.Den))
	}
}

// renderColumnLines renders the children of a multi-column block. Inline
// runs are grouped into lines at line-break tokens; a line carrying a
// dotfill leader becomes a name/leader/amount ingredient row. Block nodes
// flush the current line and render standalone.
func renderColumnLines(b *strings.Builder, nodes []Node) {
	var line []Node
	flush := func() {
		if len(line) == 0 {
			return
		}
		defer func() { line = nil }()
		if blankLine(line) {
			return
		}
		if i := dotfillIndex(line); i >= 0 {
			b.WriteString(`    <div class="ingredient-item"><span class="ingredient-name">`)
			b.WriteString(strings.TrimSpace(renderInlineRun(line[:i])))
			b.WriteString(`</span><span class="dotfill"></span><span class="ingredient-amount">`)
			b.WriteString(strings.TrimSpace(renderInlineRun(line[i+1:])))
			b.WriteString("</span></div>\n")
			return
		}
		b.WriteString(`    <div class="column-line">`)
		b.WriteString(strings.TrimSpace(renderInlineRun(line)))
		b.WriteString("</div>\n")
	}

	for _, n := range nodes {
		switch {
		case n.Kind == KindToken && n.Token == TokenLineBreak:
			flush()
		case n.Kind == KindList || n.Kind == KindHeading || n.Kind == KindColumns ||
			(n.Kind == KindToken && (n.Token == TokenRule || n.Token == TokenPageBreak)):
			flush()
			renderNode(b, n)
		default:
			line = append(line, n)
		}
	}
	flush()
}

func renderInlineRun(nodes []Node) string {
	var b strings.Builder
	renderNodes(&b, nodes)
	return b.String()
}

func blankLine(nodes []Node) bool {
	for _, n := range nodes {
		if n.Kind != KindText || strings.TrimSpace(n.Text) != "" {
			return false
		}
	}
	return true
}

func dotfillIndex(nodes []Node) int {
	for i, n := range nodes {
		if n.Kind == KindToken && n.Token == TokenDotfill {
			return i
		}
	}
	return -1
}

// trimItem drops leading/trailing blank text and a trailing line-break
// token from a list item, mirroring the source habit of ending items
// with \\.
func trimItem(item []Node) []Node {
	for len(item) > 0 {
		last := item[len(item)-1]
		if last.Kind == KindToken && last.Token == TokenLineBreak {
			item = item[:len(item)-1]
			continue
		}
		if last.Kind == KindText && strings.TrimSpace(last.Text) == "" {
			item = item[:len(item)-1]
			continue
		}
		break
	}
	for len(item) > 0 {
		first := item[0]
		if first.Kind == KindText && strings.TrimSpace(first.Text) == "" {
			item = item[1:]
			continue
		}
		break
	}
	// Tighten surrounding whitespace on the edges of the remaining text.
	if len(item) > 0 {
		if item[0].Kind == KindText {
			item[0].Text = strings.TrimLeft(item[0].Text, " \t\n")
		}
		if last := len(item) - 1; item[last].Kind == KindText {
			item[last].Text = strings.TrimRight(item[last].Text, " \t\n")
		}
	}
	return item
}

// escapeText HTML-escapes literal text and applies the typographic
// replacements the source markup implies.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "---", "&mdash;")
	s = strings.ReplaceAll(s, "``", "&ldquo;")
	s = strings.ReplaceAll(s, "''", "&rdquo;")
	s = strings.ReplaceAll(s, "`", "&lsquo;")
	return s
}
