// Package listing highlights code listings (macro bodies, typedef and friend
// definitions) with the tree-sitter C++ grammar.
package listing

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Token classes emitted as span classes.
const (
	ClassKeyword = "hl-keyword"
	ClassType    = "hl-type"
	ClassString  = "hl-string"
	ClassNumber  = "hl-number"
	ClassComment = "hl-comment"
)

// Highlighter wraps a tree-sitter parser. A parser is not thread-safe, so
// each goroutine must own its Highlighter.
type Highlighter struct {
	parser *sitter.Parser
}

// NewHighlighter creates a Highlighter for C++ listings.
func NewHighlighter() *Highlighter {
	p := sitter.NewParser()
	p.SetLanguage(cpp.GetLanguage())
	return &Highlighter{parser: p}
}

// HTML escapes src and wraps recognized tokens in classed spans. Text
// between tokens is kept as is, so stripping the tags and unescaping gives
// back src. When parsing fails src is returned escaped only.
func (h *Highlighter) HTML(ctx context.Context, src string) string {
	if src == "" {
		return ""
	}
	source := []byte(src)
	tree, err := h.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return html.EscapeString(src)
	}
	defer tree.Close()

	var b strings.Builder
	var pos uint32
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		class := classify(n)
		if class == "" && n.ChildCount() > 0 {
			for i := 0; i < int(n.ChildCount()); i++ {
				walk(n.Child(i))
			}
			return
		}
		start, end := n.StartByte(), n.EndByte()
		if start < pos || end <= start || int(end) > len(source) {
			return
		}
		b.WriteString(html.EscapeString(string(source[pos:start])))
		text := html.EscapeString(string(source[start:end]))
		if class == "" {
			b.WriteString(text)
		} else {
			fmt.Fprintf(&b, `<span class="%s">%s</span>`, class, text)
		}
		pos = end
	}
	walk(tree.RootNode())
	if int(pos) < len(source) {
		b.WriteString(html.EscapeString(string(source[pos:])))
	}
	return b.String()
}

// classify returns the span class of n, or "" when n is not highlighted as
// a whole.
func classify(n *sitter.Node) string {
	switch n.Type() {
	case "primitive_type", "type_identifier", "sized_type_specifier":
		return ClassType
	case "string_literal", "raw_string_literal", "char_literal", "system_lib_string":
		return ClassString
	case "number_literal":
		return ClassNumber
	case "comment":
		return ClassComment
	case "true", "false", "nullptr", "this":
		return ClassKeyword
	}
	if !n.IsNamed() && isWord(n.Type()) {
		return ClassKeyword
	}
	return ""
}

// isWord reports whether an anonymous token is a keyword or directive such
// as "return" or "#define", as opposed to punctuation.
func isWord(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
