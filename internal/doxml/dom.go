package doxml

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// node is an element or, when name is empty, a run of character data.
// Children keep document order so mixed content survives.
type node struct {
	name     string
	attrs    map[string]string
	children []*node
	text     string
}

func (n *node) isText() bool {
	return n.name == ""
}

// parseDocument builds a small ordered DOM of data.
func parseDocument(data []byte) (*node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = true

	var stack []*node
	var root *node
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "malformed XML")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			elem := &node{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				elem.attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, elem)
			} else if root == nil {
				root = elem
			} else {
				return nil, errors.Errorf("unexpected element %s after document end", t.Name.Local)
			}
			stack = append(stack, elem)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, errors.New("malformed XML: character data outside the root element")
				}
				continue
			}
			parent := stack[len(stack)-1]
			if last := len(parent.children) - 1; last >= 0 && parent.children[last].isText() {
				parent.children[last].text += string(t)
				continue
			}
			parent.children = append(parent.children, &node{text: string(t)})
		}
	}
	if root == nil {
		return nil, errors.Wrap(io.ErrUnexpectedEOF, "empty document")
	}
	return root, nil
}

func (n *node) attr(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// child returns the first element child called name.
func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// elements returns the element children, skipping character data.
func (n *node) elements() []*node {
	out := make([]*node, 0, len(n.children))
	for _, c := range n.children {
		if !c.isText() {
			out = append(out, c)
		}
	}
	return out
}

// innerText concatenates all character data below n.
func (n *node) innerText() string {
	if n == nil {
		return ""
	}
	if n.isText() {
		return n.text
	}
	var b strings.Builder
	for _, c := range n.children {
		b.WriteString(c.innerText())
	}
	return b.String()
}
