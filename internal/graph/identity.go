package graph

import (
	"slices"
	"strconv"
	"strings"

	"github.com/phobologic/doxyfront/internal/ref"
)

// finalizeIDs replaces every id with a readable, collision-free slug and
// rebuilds the id index. Definitions are visited in order of their original
// id, arena order breaking ties, so identical input yields identical ids.
func (g *Graph) finalizeIDs() {
	used := map[string]struct{}{
		ScopeRootID: {},
		FileRootID:  {},
	}

	order := make([]ref.Handle, 0, len(g.defs))
	for i := range g.defs {
		if h := ref.Handle(i); !g.IsRoot(h) {
			order = append(order, h)
		}
	}
	slices.SortStableFunc(order, func(a, b ref.Handle) int {
		return strings.Compare(g.defs[a].ID, g.defs[b].ID)
	})

	for _, h := range order {
		base := g.slug(h)
		id := base
		for n := 1; ; n++ {
			if _, taken := used[id]; !taken {
				break
			}
			id = base + "-" + strconv.Itoa(n)
		}
		used[id] = struct{}{}
		g.defs[h].ID = id
	}

	g.byID = make(map[string]ref.Handle, len(g.defs))
	for i, d := range g.defs {
		g.byID[d.ID] = ref.Handle(i)
	}
}

// slug builds the un-suffixed id of h: its kind, its name and the names of
// its ancestors, nearest first.
func (g *Graph) slug(h ref.Handle) string {
	d := g.defs[h]
	parts := []string{d.KindName(), d.Name}
	ancestors := g.ScopeAncestors(h)
	if d.Kind.IsPath() {
		ancestors = g.FileAncestors(h)
	}
	for _, a := range ancestors {
		parts = append(parts, g.defs[a].Name)
	}
	return Slugify(strings.Join(parts, "-"), g.opts.MaxSlugLength)
}

// Slugify lowercases s, drops every character outside [a-z0-9_-] and caps the
// result at limit bytes without leaving a trailing dash.
func Slugify(s string, limit int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return strings.TrimRight(out, "-")
}
