package graph

import (
	"strings"

	"github.com/phobologic/doxyfront/internal/diag"
	"github.com/phobologic/doxyfront/internal/markup"
	"github.com/phobologic/doxyfront/internal/model"
	"github.com/phobologic/doxyfront/internal/ref"
)

// unqualify sets every Name from its QualifiedName by stripping the qualified
// name of its parent. It always starts from QualifiedName, so running it again
// yields the same names.
func (g *Graph) unqualify(diags *diag.List) {
	for i, d := range g.defs {
		if !g.IsRoot(ref.Handle(i)) {
			d.Name = ""
		}
	}

	scopeChildren := g.children(func(d *model.Definition) ref.Handle { return d.ScopeParent })
	fileChildren := g.children(func(d *model.Definition) ref.Handle { return d.FileParent })

	visited := make([]bool, len(g.defs))
	g.descend(g.scopeRoot, scopeChildren, g.opts.ScopeSeparators, visited, diags)
	visited = make([]bool, len(g.defs))
	g.descend(g.fileRoot, fileChildren, []string{g.opts.PathSeparator}, visited, diags)

	// Groups, pages and anything caught in a parent cycle were not reached.
	for i, d := range g.defs {
		if d.Name == "" {
			d.Name = g.fallbackName(ref.Handle(i))
		}
	}
}

func (g *Graph) children(parent func(*model.Definition) ref.Handle) map[ref.Handle][]ref.Handle {
	out := make(map[ref.Handle][]ref.Handle)
	for i, d := range g.defs {
		if p := parent(d); p.Valid() {
			out[p] = append(out[p], ref.Handle(i))
		}
	}
	return out
}

func (g *Graph) descend(parent ref.Handle, children map[ref.Handle][]ref.Handle, seps []string, visited []bool, diags *diag.List) {
	if !parent.Valid() || visited[parent] {
		return
	}
	visited[parent] = true

	prefix := ""
	if !g.IsRoot(parent) {
		prefix = g.defs[parent].QualifiedName
	}
	for _, h := range children[parent] {
		if visited[h] {
			continue
		}
		d := g.defs[h]
		name, ok := stripQualifier(d.QualifiedName, prefix, seps)
		if !ok {
			diags.Addf(d.Unit, diag.Qualification,
				"qualified name %q does not extend parent %q", d.QualifiedName, prefix)
		}
		if name == "" {
			name = g.fallbackName(h)
		}
		d.Name = name
		g.descend(h, children, seps, visited, diags)
	}
}

// stripQualifier removes prefix plus a separator from qualified. It reports
// false when qualified looks qualified but does not extend prefix.
func stripQualifier(qualified, prefix string, seps []string) (string, bool) {
	if prefix == "" {
		return qualified, true
	}
	for _, sep := range seps {
		if rest, ok := strings.CutPrefix(qualified, prefix+sep); ok && rest != "" {
			return rest, true
		}
	}
	for _, sep := range seps {
		if strings.Contains(qualified, sep) {
			return qualified, false
		}
	}
	// Already a short name, as Doxygen gives for files.
	return qualified, true
}

// fallbackName names h from its imported id, which identity finalization
// leaves alone, so unqualify gives the same answer before and after it.
func (g *Graph) fallbackName(h ref.Handle) string {
	d := g.defs[h]
	switch {
	case d.QualifiedName != "":
		return d.QualifiedName
	case g.importIDs[h] != "":
		return g.importIDs[h]
	default:
		return d.KindName()
	}
}

// deriveBriefs promotes the first detailed paragraph to the brief description
// when the brief is empty. The fragment is shared, not copied.
func (g *Graph) deriveBriefs() {
	for _, d := range g.defs {
		if !d.Brief.Empty() {
			continue
		}
		if p := d.Detailed.FirstParagraph(); p != nil {
			d.Brief = markup.New(p)
		}
	}
}
