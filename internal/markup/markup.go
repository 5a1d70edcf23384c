// Package markup implements the inline content tree used in descriptions,
// types and parameter defaults, with plaintext and HTML rendering.
package markup

import (
	"fmt"
	"html"
	"iter"
	"strings"

	"github.com/phobologic/doxyfront/internal/ref"
)

// Kind identifies the variant of a Fragment.
type Kind uint8

const (
	// Container groups children without adding markup. Tree roots use it.
	Container Kind = iota
	Text
	Format
	CrossRef
	Link
	Section
)

// FormatKind selects the HTML element a Format fragment renders as.
type FormatKind uint8

const (
	Paragraph FormatKind = iota
	Code
	Strong
	Emphasis
	Itemize
	Enumerate
	Item
)

// Tag returns the HTML element name for f.
func (f FormatKind) Tag() string {
	switch f {
	case Paragraph:
		return "p"
	case Code:
		return "code"
	case Strong:
		return "strong"
	case Emphasis:
		return "em"
	case Itemize:
		return "ul"
	case Enumerate:
		return "ol"
	case Item:
		return "li"
	default:
		return "span"
	}
}

// Fragment is one node of a markup tree. Only the fields belonging to its
// Kind are meaningful.
type Fragment struct {
	Kind     Kind        `json:"kind"`
	Text     string      `json:"text,omitempty"`
	Format   FormatKind  `json:"format,omitempty"`
	Ref      ref.Ref     `json:"ref"`
	URL      string      `json:"url,omitempty"`
	Section  string      `json:"section,omitempty"`
	Children []*Fragment `json:"children,omitempty"`
}

// NewText returns a leaf fragment.
func NewText(s string) *Fragment {
	return &Fragment{Kind: Text, Text: s}
}

// NewFormat returns a formatting fragment wrapping children.
func NewFormat(f FormatKind, children ...*Fragment) *Fragment {
	return &Fragment{Kind: Format, Format: f, Children: children}
}

// NewCrossRef returns a cross-reference whose children are its literal text.
func NewCrossRef(r ref.Ref, children ...*Fragment) *Fragment {
	return &Fragment{Kind: CrossRef, Ref: r, Children: children}
}

// NewLink returns an external hyperlink.
func NewLink(url string, children ...*Fragment) *Fragment {
	return &Fragment{Kind: Link, URL: url, Children: children}
}

// NewSection returns a labelled section such as "See also".
func NewSection(kind string, children ...*Fragment) *Fragment {
	return &Fragment{Kind: Section, Section: kind, Children: children}
}

// Linker renders a resolved reference target as HTML. Implementations decide
// how much of the target's qualified name to show.
type Linker interface {
	LinkHTML(target ref.Handle) string
}

func (f *Fragment) plaintext() string {
	if f.Kind == Text {
		return f.Text
	}
	parts := make([]string, len(f.Children))
	for i, c := range f.Children {
		parts[i] = c.plaintext()
	}
	return strings.Join(parts, " ")
}

func (f *Fragment) childrenHTML(l Linker) string {
	parts := make([]string, len(f.Children))
	for i, c := range f.Children {
		parts[i] = c.html(l)
	}
	return strings.Join(parts, " ")
}

func (f *Fragment) html(l Linker) string {
	switch f.Kind {
	case Text:
		return html.EscapeString(f.Text)
	case Format:
		tag := f.Format.Tag()
		return fmt.Sprintf("<%s>%s</%s>", tag, f.childrenHTML(l), tag)
	case CrossRef:
		if f.Ref.IsResolved() && l != nil {
			return l.LinkHTML(f.Ref.Target)
		}
		if len(f.Children) == 0 {
			return html.EscapeString(f.Ref.Name)
		}
		return f.childrenHTML(l)
	case Link:
		return fmt.Sprintf(`<a class="external" href="%s">%s</a>`, html.EscapeString(f.URL), f.childrenHTML(l))
	case Section:
		return fmt.Sprintf("<section><h3>%s</h3>%s</section>", html.EscapeString(f.Section), f.childrenHTML(l))
	default:
		return f.childrenHTML(l)
	}
}

func (f *Fragment) walkRefs(yield func(*ref.Ref) bool) bool {
	if f.Kind == CrossRef && !yield(&f.Ref) {
		return false
	}
	for _, c := range f.Children {
		if !c.walkRefs(yield) {
			return false
		}
	}
	return true
}

// Markup is a tree of fragments under a container root.
type Markup struct {
	Root *Fragment `json:"root"`
}

// New returns an empty markup tree.
func New(children ...*Fragment) *Markup {
	return &Markup{Root: &Fragment{Kind: Container, Children: children}}
}

// Plain wraps a literal string.
func Plain(s string) *Markup {
	return New(NewText(s))
}

// Append adds fragments to the root.
func (m *Markup) Append(children ...*Fragment) {
	m.Root.Children = append(m.Root.Children, children...)
}

// Empty reports whether m carries no visible text.
func (m *Markup) Empty() bool {
	if m == nil || m.Root == nil {
		return true
	}
	return m.Plaintext() == ""
}

// FirstParagraph returns the first child of the root when it is a paragraph.
func (m *Markup) FirstParagraph() *Fragment {
	if m == nil || m.Root == nil || len(m.Root.Children) == 0 {
		return nil
	}
	first := m.Root.Children[0]
	if first.Kind != Format || first.Format != Paragraph {
		return nil
	}
	return first
}

// Plaintext concatenates all text and collapses superfluous whitespace.
func (m *Markup) Plaintext() string {
	if m == nil || m.Root == nil {
		return ""
	}
	return CollapseWhitespace(m.Root.plaintext())
}

// HTML renders m. A nil Linker renders resolved references as their text.
func (m *Markup) HTML(l Linker) string {
	if m == nil || m.Root == nil {
		return ""
	}
	return m.Root.html(l)
}

// Refs yields a pointer to every cross-reference in m so callers can resolve
// them in place.
func (m *Markup) Refs() iter.Seq[*ref.Ref] {
	return func(yield func(*ref.Ref) bool) {
		if m == nil || m.Root == nil {
			return
		}
		m.Root.walkRefs(yield)
	}
}
