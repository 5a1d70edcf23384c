package graph

import (
	"github.com/phobologic/doxyfront/internal/diag"
	"github.com/phobologic/doxyfront/internal/ref"
)

// resolve rewrites every symbolic reference into a resolved or unresolved
// one. The id lookup lives only for the duration of the pass.
func (g *Graph) resolve(diags *diag.List) {
	byID := make(map[string]ref.Handle, len(g.defs))
	for i, d := range g.defs {
		if d.ID != "" {
			byID[d.ID] = ref.Handle(i)
		}
	}
	lookup := func(id string) (ref.Handle, bool) {
		h, ok := byID[id]
		return h, ok
	}

	for _, d := range g.defs {
		for r := range d.Refs() {
			if r.State != ref.Symbolic {
				continue
			}
			id := r.ID
			if r.Resolve(lookup) {
				g.summary.Resolved++
				continue
			}
			g.summary.Unresolved++
			diags.Addf(d.Unit, diag.DanglingReference, "unresolved reference %q from %q", id, d.ID)
		}
	}
}
