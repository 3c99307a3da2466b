package latex

import (
	"fmt"
	"strconv"
	"strings"
)

// maxInlineDepth bounds recursive conversion of inline arguments so
// malformed unbalanced input cannot drive the converter off a cliff.
const maxInlineDepth = 8

// environment names making up the closed block grammar.
const (
	envEnumerate = "enumerate"
	envItemize   = "itemize"
	envMulticols = "multicols"
)

// escapable special characters: the backslash form in the source becomes
// the literal character in the output.
const escapable = `&#%$_{}`

// Convert runs the scanning state machine over one body and returns the
// top-level node sequence plus any degradation warnings. The returned
// error is always a *ConvertError and means the document must be excluded
// from the export; warnings alone never exclude anything.
func Convert(body string) ([]Node, []string, error) {
	c := &converter{src: body}
	nodes, err := c.run(0)
	return nodes, c.warnings, err
}

type converter struct {
	src      string
	pos      int
	warnings []string
}

func (c *converter) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// frame is one entry of the explicit environment stack. The bottom frame
// is the document root and is never popped.
type frame struct {
	env      string
	cols     int
	children []Node
	items    [][]Node // list frames only
	item     []Node
	inItem   bool
}

func (f *frame) isList() bool { return f.env == envEnumerate || f.env == envItemize }

// close builds the node for a completed environment frame.
func (f *frame) close() Node {
	if f.isList() {
		if f.inItem {
			f.items = append(f.items, f.item)
		}
		return Node{Kind: KindList, Ordered: f.env == envEnumerate, Items: f.items}
	}
	return Node{Kind: KindColumns, Cols: f.cols, Children: f.children}
}

// run scans from the current position to the end of input, maintaining the
// environment stack. depth guards recursive inline-argument conversion.
func (c *converter) run(depth int) ([]Node, error) {
	if depth > maxInlineDepth {
		return nil, &ConvertError{Pos: c.pos, Reason: "inline nesting exceeds maximum depth"}
	}

	stack := []*frame{{}}
	top := func() *frame { return stack[len(stack)-1] }

	emit := func(n Node) {
		f := top()
		if f.isList() {
			if !f.inItem {
				// Content before the first \item has no slot in the output
				// list; blank text is dropped silently, anything else is a
				// degradation.
				if n.Kind != KindText || strings.TrimSpace(n.Text) != "" {
					c.warnf("content outside \\item dropped at offset %d", c.pos)
				}
				return
			}
			f.item = append(f.item, n)
			return
		}
		f.children = append(f.children, n)
	}

	emitText := func(s string) {
		if s == "" {
			return
		}
		// Merge with a preceding text node where possible.
		f := top()
		var tail *[]Node
		if f.isList() {
			if !f.inItem {
				emit(Node{Kind: KindText, Text: s})
				return
			}
			tail = &f.item
		} else {
			tail = &f.children
		}
		if k := len(*tail); k > 0 && (*tail)[k-1].Kind == KindText {
			(*tail)[k-1].Text += s
			return
		}
		emit(Node{Kind: KindText, Text: s})
	}

	for c.pos < len(c.src) {
		ch := c.src[c.pos]
		switch ch {
		case '\\':
			start := c.pos
			c.pos++
			if c.pos >= len(c.src) {
				emitText(`\`)
				break
			}
			next := c.src[c.pos]
			if next == '\\' {
				c.pos++
				emit(Node{Kind: KindToken, Token: TokenLineBreak})
				break
			}
			if !isLetter(next) {
				c.pos++
				if strings.IndexByte(escapable, next) >= 0 {
					emitText(string(next))
				} else {
					// Not an escape we know; keep the source form.
					emitText(c.src[start:c.pos])
				}
				break
			}

			name := c.readName()
			switch name {
			case "textbf", "textit", "emph":
				arg, ok := c.readGroup()
				if !ok {
					return nil, &ConvertError{Pos: start, Reason: fmt.Sprintf(`unterminated argument of \%s`, name)}
				}
				children, err := convertFragment(arg, depth+1, c)
				if err != nil {
					return nil, err
				}
				style := StyleEmph
				if name == "textbf" {
					style = StyleBold
				}
				emit(Node{Kind: KindInline, Style: style, Children: children})

			case "section", "subsection":
				arg, ok := c.readGroup()
				if !ok {
					return nil, &ConvertError{Pos: start, Reason: fmt.Sprintf(`unterminated argument of \%s`, name)}
				}
				children, err := convertFragment(arg, depth+1, c)
				if err != nil {
					return nil, err
				}
				level := 1
				if name == "subsection" {
					level = 2
				}
				emit(Node{Kind: KindHeading, Level: level, Children: children})

			case "begin":
				env, ok := c.readGroup()
				if !ok {
					return nil, &ConvertError{Pos: start, Reason: `unterminated argument of \begin`}
				}
				switch env {
				case envEnumerate, envItemize:
					stack = append(stack, &frame{env: env})
				case envMulticols:
					// The column count is optional; a group that is not a
					// positive integer stays in the stream as content.
					cols := 2
					save := c.pos
					if arg, ok := c.readGroup(); ok {
						if n, err := strconv.Atoi(strings.TrimSpace(arg)); err == nil && n > 0 {
							cols = n
						} else {
							c.pos = save
						}
					}
					stack = append(stack, &frame{env: envMulticols, cols: cols})
				default:
					c.warnf(`unrecognized environment \begin{%s} passed through`, env)
					emitText(fmt.Sprintf(`\begin{%s}`, env))
				}

			case "end":
				env, ok := c.readGroup()
				if !ok {
					return nil, &ConvertError{Pos: start, Reason: `unterminated argument of \end`}
				}
				switch env {
				case envEnumerate, envItemize, envMulticols:
					if len(stack) == 1 || top().env != env {
						return nil, &ConvertError{Pos: start, Reason: fmt.Sprintf(`mismatched \end{%s}`, env)}
					}
					done := top().close()
					stack = stack[:len(stack)-1]
					emit(done)
				default:
					c.warnf(`unrecognized environment \end{%s} passed through`, env)
					emitText(fmt.Sprintf(`\end{%s}`, env))
				}

			case "item":
				f := top()
				if !f.isList() {
					c.warnf(`\item outside list environment dropped`)
					break
				}
				if f.inItem {
					f.items = append(f.items, f.item)
				}
				f.item = nil
				f.inItem = true
				c.skipSpaces()

			case "hrulefill":
				emit(Node{Kind: KindToken, Token: TokenRule})
			case "newpage":
				emit(Node{Kind: KindToken, Token: TokenPageBreak})
			case "dotfill":
				emit(Node{Kind: KindToken, Token: TokenDotfill})
			case "newline":
				emit(Node{Kind: KindToken, Token: TokenLineBreak})

			case "nicefrac":
				num, ok1 := c.readGroup()
				den, ok2 := c.readGroup()
				if !ok1 || !ok2 {
					return nil, &ConvertError{Pos: start, Reason: `unterminated argument of \nicefrac`}
				}
				emit(Node{Kind: KindToken, Token: TokenFraction, Num: strings.TrimSpace(num), Den: strings.TrimSpace(den)})

			case "vspace", "hspace":
				// Print-layout spacing has no HTML counterpart.
				c.readGroup()
			case "setlength":
				c.readGroup()
				c.readGroup()
			case "noindent", "centering", "columnbreak",
				"small", "large", "Large", "huge", "normalsize", "raggedright":
				// Recognized layout switches, dropped in the output.

			default:
				c.warnf(`unrecognized directive \%s passed through`, name)
				// Keep the whole source form, argument included, verbatim.
				if arg, ok := c.readGroup(); ok {
					emitText(fmt.Sprintf(`\%s{%s}`, name, arg))
				} else {
					emitText(c.src[start:c.pos])
				}
			}

		case '~':
			c.pos++
			emit(Node{Kind: KindToken, Token: TokenNbsp})

		case '{', '}':
			// Bare grouping braces carry no structure the output needs.
			c.pos++

		default:
			start := c.pos
			for c.pos < len(c.src) && !isSpecial(c.src[c.pos]) {
				c.pos++
			}
			emitText(c.src[start:c.pos])
		}
	}

	if len(stack) > 1 {
		return nil, &ConvertError{Pos: c.pos, Reason: fmt.Sprintf("unterminated environment %q", top().env)}
	}
	return stack[0].children, nil
}

// convertFragment runs a nested conversion over an inline argument,
// accumulating warnings into the parent converter.
func convertFragment(src string, depth int, parent *converter) ([]Node, error) {
	c := &converter{src: src}
	nodes, err := c.run(depth)
	parent.warnings = append(parent.warnings, c.warnings...)
	return nodes, err
}

func isSpecial(b byte) bool {
	return b == '\\' || b == '~' || b == '{' || b == '}'
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// readName consumes a command name: letters plus an optional trailing
// star. The starred and unstarred heading forms convert identically.
func (c *converter) readName() string {
	start := c.pos
	for c.pos < len(c.src) && isLetter(c.src[c.pos]) {
		c.pos++
	}
	name := c.src[start:c.pos]
	if c.pos < len(c.src) && c.src[c.pos] == '*' {
		c.pos++
	}
	return name
}

// readGroup consumes a brace-delimited argument, honoring nested braces,
// and returns its raw contents. Reports false when no balanced group
// starts at the cursor.
func (c *converter) readGroup() (string, bool) {
	i := c.pos
	for i < len(c.src) && (c.src[i] == ' ' || c.src[i] == '\t') {
		i++
	}
	if i >= len(c.src) || c.src[i] != '{' {
		return "", false
	}
	depth := 0
	for j := i; j < len(c.src); j++ {
		switch c.src[j] {
		case '\\':
			j++ // next char is literal, even a brace
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				c.pos = j + 1
				return c.src[i+1 : j], true
			}
		}
	}
	return "", false
}

func (c *converter) skipSpaces() {
	for c.pos < len(c.src) && (c.src[c.pos] == ' ' || c.src[c.pos] == '\t') {
		c.pos++
	}
}
