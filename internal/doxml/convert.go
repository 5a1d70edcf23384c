package doxml

import (
	"strings"

	"github.com/phobologic/doxyfront/internal/markup"
	"github.com/phobologic/doxyfront/internal/ref"
)

var formats = map[string]markup.FormatKind{
	"para":           markup.Paragraph,
	"computeroutput": markup.Code,
	"bold":           markup.Strong,
	"emphasis":       markup.Emphasis,
	"itemizedlist":   markup.Itemize,
	"orderedlist":    markup.Enumerate,
	"listitem":       markup.Item,
}

// convertMarkup turns the mixed content of n into a markup tree. It returns
// nil when n is nil or carries no content at all.
func convertMarkup(n *node) *markup.Markup {
	if n == nil {
		return nil
	}
	frags := convertChildren(n)
	if len(frags) == 0 {
		return nil
	}
	return markup.New(frags...)
}

func convertChildren(n *node) []*markup.Fragment {
	var out []*markup.Fragment
	for _, c := range n.children {
		out = append(out, convertNode(c)...)
	}
	return out
}

// convertNode maps one DOM node onto zero or more fragments. Unknown elements
// are transparent: their children are spliced into the parent.
func convertNode(n *node) []*markup.Fragment {
	if n.isText() {
		// Children are joined with spaces when rendered, so whitespace-only
		// runs carry nothing.
		if strings.TrimSpace(n.text) == "" {
			return nil
		}
		return []*markup.Fragment{markup.NewText(n.text)}
	}

	if f, ok := formats[n.name]; ok {
		return []*markup.Fragment{markup.NewFormat(f, convertChildren(n)...)}
	}

	switch n.name {
	case "ref":
		id, _ := n.attr("refid")
		text := n.innerText()
		r := ref.NewSymbolic(id, text)
		if id == "" {
			r = ref.NewUnresolved(text)
		}
		return []*markup.Fragment{markup.NewCrossRef(r, convertChildren(n)...)}
	case "ulink":
		url, _ := n.attr("url")
		return []*markup.Fragment{markup.NewLink(url, convertChildren(n)...)}
	case "simplesect", "parameterlist":
		kind, _ := n.attr("kind")
		if kind == "" {
			kind = n.name
		}
		return []*markup.Fragment{markup.NewSection(kind, convertChildren(n)...)}
	case "sp":
		return []*markup.Fragment{markup.NewText(" ")}
	default:
		return convertChildren(n)
	}
}

// symbolicRef reads a refid attribute and the element text, as used by
// inner*, basecompoundref and includes. It reports false when there is
// neither.
func symbolicRef(n *node) (ref.Ref, bool) {
	id, _ := n.attr("refid")
	name := strings.TrimSpace(n.innerText())
	switch {
	case id != "":
		return ref.NewSymbolic(id, name), true
	case name != "":
		return ref.NewUnresolved(name), true
	default:
		return ref.Ref{}, false
	}
}
