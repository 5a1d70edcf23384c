package graph

import (
	"github.com/phobologic/doxyfront/internal/diag"
	"github.com/phobologic/doxyfront/internal/model"
	"github.com/phobologic/doxyfront/internal/ref"
)

// assignParents derives scope and file parents from compound membership and
// attaches every orphan to a synthetic root.
//
// The arena is scanned once, left to right. A definition listed by several
// compounds of the same relation ends up with the last one scanned. Cycles
// are then cut, leaving the detached definition to the root.
func (g *Graph) assignParents(diags *diag.List) {
	for i, d := range g.defs {
		owner := ref.Handle(i)
		scope, file := d.Kind.ScopeOwner(), d.Kind.FileOwner()
		if !scope && !file {
			continue
		}
		for _, m := range d.Members {
			if !m.IsResolved() || m.Target == owner {
				continue
			}
			child := g.defs[m.Target]
			if scope && child.Kind.ScopeEligible() {
				child.ScopeParent = owner
			}
			if file && child.Kind.FileEligible() {
				child.FileParent = owner
			}
		}
	}

	g.breakCycles("scope", func(d *model.Definition) *ref.Handle { return &d.ScopeParent }, diags)
	g.breakCycles("file", func(d *model.Definition) *ref.Handle { return &d.FileParent }, diags)

	n := len(g.defs)
	scopeRoot := model.New(model.Index, ScopeRootID)
	scopeRoot.Name = ScopeRootID
	fileRoot := model.New(model.Index, FileRootID)
	fileRoot.Name = FileRootID
	g.scopeRoot, g.fileRoot = ref.Handle(n), ref.Handle(n+1)
	g.defs = append(g.defs, scopeRoot, fileRoot)
	g.importIDs = append(g.importIDs, ScopeRootID, FileRootID)

	for i, d := range g.defs[:n] {
		h := ref.Handle(i)
		if d.Kind.ScopeEligible() && !d.ScopeParent.Valid() {
			d.ScopeParent = g.scopeRoot
			scopeRoot.Members = append(scopeRoot.Members, ref.NewResolved(h, d.QualifiedName))
		}
		if d.Kind.FileEligible() && !d.FileParent.Valid() {
			d.FileParent = g.fileRoot
			fileRoot.Members = append(fileRoot.Members, ref.NewResolved(h, d.QualifiedName))
		}
	}
}

// breakCycles walks every parent chain of one relation in arena order and
// clears the link that closes a cycle.
func (g *Graph) breakCycles(relation string, parent func(*model.Definition) *ref.Handle, diags *diag.List) {
	const (
		unseen = iota
		onPath
		done
	)
	state := make([]uint8, len(g.defs))
	var path []ref.Handle
	for i := range g.defs {
		path = path[:0]
		for h := ref.Handle(i); h.Valid() && state[h] == unseen; {
			state[h] = onPath
			path = append(path, h)
			p := parent(g.defs[h])
			if p.Valid() && state[*p] == onPath {
				d := g.defs[h]
				diags.Addf(d.Unit, diag.Structural, "%s parent cycle: %q no longer belongs to %q", relation, d.ID, g.defs[*p].ID)
				*p = ref.None
			}
			h = *p
		}
		for _, h := range path {
			state[h] = done
		}
	}
}
