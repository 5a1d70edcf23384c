// Package graph turns independently imported definitions into one resolved
// symbol graph.
package graph

import (
	"context"
	"iter"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/phobologic/doxyfront/internal/diag"
	"github.com/phobologic/doxyfront/internal/model"
	"github.com/phobologic/doxyfront/internal/ref"
)

var tracer = otel.Tracer("doxyfront.graph")

// Root ids. They double as the slugs of the synthetic roots.
const (
	ScopeRootID = "index"
	FileRootID  = "files"
)

// Options tunes naming and locators.
type Options struct {
	// ScopeSeparators separate scope components in qualified names.
	ScopeSeparators []string
	// PathSeparator separates components of directory and file names.
	PathSeparator string
	// MaxSlugLength caps generated ids before a collision suffix is added.
	MaxSlugLength int
	// PageExtension is appended to pages when building URLs.
	PageExtension string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		ScopeSeparators: []string{"::", "."},
		PathSeparator:   "/",
		MaxSlugLength:   64,
		PageExtension:   ".html",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if len(o.ScopeSeparators) == 0 {
		o.ScopeSeparators = d.ScopeSeparators
	}
	if o.PathSeparator == "" {
		o.PathSeparator = d.PathSeparator
	}
	if o.MaxSlugLength <= 0 {
		o.MaxSlugLength = d.MaxSlugLength
	}
	return o
}

// Summary counts what a build did.
type Summary struct {
	Definitions int
	Duplicates  int
	Resolved    int
	Unresolved  int
}

// Graph is a frozen, resolved arena of definitions. Handles returned by its
// methods index into the arena.
type Graph struct {
	defs      []*model.Definition
	importIDs []string
	byID      map[string]ref.Handle
	scopeRoot ref.Handle
	fileRoot  ref.Handle
	opts      Options
	summary   Summary
}

// Build merges defs, in the order given, into a graph. The definitions are
// taken over by the graph and mutated. Problems are returned as diagnostics;
// Build never fails.
func Build(ctx context.Context, defs []*model.Definition, opts Options) (*Graph, diag.List) {
	ctx, span := tracer.Start(ctx, "graph.Build",
		trace.WithAttributes(attribute.Int("input_definitions", len(defs))),
	)
	defer span.End()

	g := &Graph{opts: opts.withDefaults()}
	var diags diag.List

	runPass(ctx, "graph.merge", func() { g.merge(defs, &diags) })
	runPass(ctx, "graph.resolve", func() { g.resolve(&diags) })
	runPass(ctx, "graph.parents", func() { g.assignParents(&diags) })
	runPass(ctx, "graph.naming", func() {
		g.unqualify(&diags)
		g.deriveBriefs()
	})
	runPass(ctx, "graph.identity", g.finalizeIDs)
	runPass(ctx, "graph.locators", g.assignLocators)

	g.summary.Definitions = len(g.defs)
	span.SetAttributes(
		attribute.Int("definitions", g.summary.Definitions),
		attribute.Int("unresolved", g.summary.Unresolved),
		attribute.Int("diagnostics", len(diags)),
	)
	return g, diags
}

func runPass(ctx context.Context, name string, pass func()) {
	_, span := tracer.Start(ctx, name)
	defer span.End()
	pass()
}

// merge keeps the first record for every id and drops later duplicates.
func (g *Graph) merge(defs []*model.Definition, diags *diag.List) {
	seen := make(map[string]string, len(defs))
	g.defs = make([]*model.Definition, 0, len(defs)+2)
	g.importIDs = make([]string, 0, len(defs)+2)
	for _, d := range defs {
		if d == nil {
			continue
		}
		if d.ID != "" {
			if unit, dup := seen[d.ID]; dup {
				diags.Addf(d.Unit, diag.Duplicate, "duplicate id %q, keeping the record from %s", d.ID, unit)
				g.summary.Duplicates++
				continue
			}
			seen[d.ID] = d.Unit
		}
		d.ScopeParent, d.FileParent = ref.None, ref.None
		g.defs = append(g.defs, d)
		g.importIDs = append(g.importIDs, d.ID)
	}
	g.scopeRoot, g.fileRoot = ref.None, ref.None
}

// Len returns the number of definitions, roots included.
func (g *Graph) Len() int {
	return len(g.defs)
}

// Def returns the definition at h, or nil when h is out of range.
func (g *Graph) Def(h ref.Handle) *model.Definition {
	if !h.Valid() || int(h) >= len(g.defs) {
		return nil
	}
	return g.defs[h]
}

// All yields every definition in arena order.
func (g *Graph) All() iter.Seq2[ref.Handle, *model.Definition] {
	return func(yield func(ref.Handle, *model.Definition) bool) {
		for i, d := range g.defs {
			if !yield(ref.Handle(i), d) {
				return
			}
		}
	}
}

// Lookup finds a definition by its final id.
func (g *Graph) Lookup(id string) (ref.Handle, bool) {
	h, ok := g.byID[id]
	return h, ok
}

// ScopeRoot returns the handle of the synthetic scope root.
func (g *Graph) ScopeRoot() ref.Handle { return g.scopeRoot }

// FileRoot returns the handle of the synthetic file root.
func (g *Graph) FileRoot() ref.Handle { return g.fileRoot }

// IsRoot reports whether h is one of the synthetic roots.
func (g *Graph) IsRoot(h ref.Handle) bool {
	return h.Valid() && (h == g.scopeRoot || h == g.fileRoot)
}

// Summary reports counts gathered while building.
func (g *Graph) Summary() Summary { return g.summary }

// Options returns the options the graph was built with.
func (g *Graph) Options() Options { return g.opts }

// Members returns the resolved members of h in order. Unresolved members are
// skipped.
func (g *Graph) Members(h ref.Handle) []ref.Handle {
	d := g.Def(h)
	if d == nil {
		return nil
	}
	out := make([]ref.Handle, 0, len(d.Members))
	for _, m := range d.Members {
		if m.IsResolved() {
			out = append(out, m.Target)
		}
	}
	return out
}

// ScopeAncestors returns the scope parents of h from nearest to farthest,
// stopping before the scope root.
func (g *Graph) ScopeAncestors(h ref.Handle) []ref.Handle {
	return g.ancestors(h, func(d *model.Definition) ref.Handle { return d.ScopeParent })
}

// FileAncestors returns the file parents of h from nearest to farthest,
// stopping before the file root.
func (g *Graph) FileAncestors(h ref.Handle) []ref.Handle {
	return g.ancestors(h, func(d *model.Definition) ref.Handle { return d.FileParent })
}

func (g *Graph) ancestors(h ref.Handle, parent func(*model.Definition) ref.Handle) []ref.Handle {
	var out []ref.Handle
	d := g.Def(h)
	// assignParents breaks cycles; the step bound only guards a graph
	// mutated after Build.
	for steps := 0; d != nil && steps < len(g.defs); steps++ {
		p := parent(d)
		if !p.Valid() || g.IsRoot(p) || p == h {
			break
		}
		out = append(out, p)
		d = g.Def(p)
	}
	return out
}

// URL returns the link to h relative to the output directory.
func (g *Graph) URL(h ref.Handle) string {
	d := g.Def(h)
	if d == nil {
		return ""
	}
	if d.Page != "" {
		return d.Page + g.opts.PageExtension
	}
	page, anchor, found := strings.Cut(d.Href, "#")
	if !found {
		return d.Href + g.opts.PageExtension
	}
	return page + g.opts.PageExtension + "#" + anchor
}

// Pages yields every definition that owns an output page.
func (g *Graph) Pages() iter.Seq2[ref.Handle, *model.Definition] {
	return func(yield func(ref.Handle, *model.Definition) bool) {
		for h, d := range g.All() {
			if d.Page != "" && !yield(h, d) {
				return
			}
		}
	}
}
