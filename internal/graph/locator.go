package graph

import "github.com/phobologic/doxyfront/internal/model"

// assignLocators gives every definition its page and href. Members of a class
// and enum values are anchors on their owner's page.
func (g *Graph) assignLocators() {
	for _, d := range g.defs {
		if owner := g.anchorOwner(d); owner != nil {
			d.Page = ""
			d.Href = owner.ID + "#" + d.ID
			continue
		}
		d.Page = d.ID
		d.Href = d.Page
	}
}

func (g *Graph) anchorOwner(d *model.Definition) *model.Definition {
	parent := g.Def(d.ScopeParent)
	if parent == nil {
		return nil
	}
	switch d.Kind {
	case model.EnumValue:
		return parent
	case model.Variable, model.Function, model.Typedef:
		if parent.Kind == model.Class {
			return parent
		}
	}
	return nil
}
