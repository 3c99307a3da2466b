// Package latex converts preprocessed recipe bodies into a small
// structured node tree and renders that tree as HTML. The grammar it
// recognizes is closed and fixed; everything else passes through as
// literal text with a warning. Recognition is a single-pass scan with an
// explicit environment stack, not a grammar parser: the source language is
// far larger than the slice of it recipes use, and a scanning state
// machine degrades gracefully where a strict parser would refuse.
package latex

import "fmt"

// Kind tags the node variants produced by the converter.
type Kind int

const (
	KindText    Kind = iota // literal text
	KindInline              // styled inline span wrapping Children
	KindHeading             // section heading wrapping Children
	KindList                // ordered or unordered list of Items
	KindColumns             // multi-column flowing block wrapping Children
	KindToken               // single-token substitution
)

// InlineStyle selects the wrapper for a KindInline node.
type InlineStyle string

const (
	StyleBold InlineStyle = "bold"
	StyleEmph InlineStyle = "emph"
)

// TokenKind enumerates the recognized single-token directives.
type TokenKind string

const (
	TokenRule      TokenKind = "rule"      // \hrulefill
	TokenPageBreak TokenKind = "pagebreak" // \newpage
	TokenDotfill   TokenKind = "dotfill"   // \dotfill leader between name and amount
	TokenLineBreak TokenKind = "linebreak" // \\
	TokenNbsp      TokenKind = "nbsp"      // ~
	TokenFraction  TokenKind = "fraction"  // \nicefrac{num}{den}
)

// Node is one vertex of the converted tree. Which fields are meaningful
// depends on Kind; the zero value of the rest is ignored.
type Node struct {
	Kind     Kind
	Text     string      // KindText
	Style    InlineStyle // KindInline
	Level    int         // KindHeading: 1 or 2
	Ordered  bool        // KindList
	Items    [][]Node    // KindList: one child slice per item
	Cols     int         // KindColumns
	Token    TokenKind   // KindToken
	Num, Den string      // KindToken fraction operands
	Children []Node      // KindInline, KindHeading, KindColumns
}

// ConvertError is a per-document conversion failure (mismatched
// environment nesting, unterminated argument). It excludes the document
// from the export but never the run.
type ConvertError struct {
	Pos    int // byte offset into the body
	Reason string
}

func (e *ConvertError) Error() string {
	return fmt.Sprintf("conversion error at offset %d: %s", e.Pos, e.Reason)
}
