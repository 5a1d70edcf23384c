// Package ranking orders and filters the definitions of a symbol graph for the
// symbols table.
package ranking

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/phobologic/doxyfront/internal/graph"
	"github.com/phobologic/doxyfront/internal/ref"
)

const (
	damping = 0.85
	maxIter = 100
	epsilon = 1e-6
)

// Entry is one selected definition and its rank.
type Entry struct {
	Handle ref.Handle
	Rank   float64
}

// Filter narrows the table. Zero fields match everything.
type Filter struct {
	// Name matches a case-insensitive substring of the qualified name.
	Name string
	// Kinds matches the display kind ("struct", "enum value") or the base
	// kind ("class"), case-insensitively.
	Kinds []string
	// Limit keeps the top entries. Zero or less keeps all.
	Limit int
}

// Rank scores every definition by PageRank over resolved references.
// Membership does not count as a reference: a namespace does not use what it
// contains. The result is indexed by handle.
func Rank(g *graph.Graph) []float64 {
	n := g.Len()
	if n == 0 {
		return nil
	}

	out := make([][]ref.Handle, n)
	for h, d := range g.All() {
		// Refs yields the members first.
		skip := len(d.Members)
		for r := range d.Refs() {
			if skip > 0 {
				skip--
				continue
			}
			if r.IsResolved() && r.Target != h {
				out[h] = append(out[h], r.Target)
			}
		}
	}
	return pageRank(out)
}

func pageRank(out [][]ref.Handle) []float64 {
	n := len(out)
	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}
	teleport := (1.0 - damping) / float64(n)

	next := make([]float64, n)
	for range maxIter {
		var dangling float64
		for i, targets := range out {
			if len(targets) == 0 {
				dangling += rank[i]
			}
		}
		base := teleport + damping*dangling/float64(n)
		for i := range next {
			next[i] = base
		}
		for i, targets := range out {
			if len(targets) == 0 {
				continue
			}
			share := damping * rank[i] / float64(len(targets))
			for _, t := range targets {
				next[t] += share
			}
		}

		var diff float64
		for i := range rank {
			diff += math.Abs(next[i] - rank[i])
		}
		rank, next = next, rank
		if diff < epsilon {
			break
		}
	}
	return rank
}

// Select returns the definitions of g that pass f, highest rank first. Ties
// keep id order. The synthetic roots are never selected.
func Select(g *graph.Graph, f Filter) []Entry {
	ranks := Rank(g)
	name := strings.ToLower(f.Name)

	var entries []Entry
	for h, d := range g.All() {
		if g.IsRoot(h) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(d.QualifiedName), name) {
			continue
		}
		if len(f.Kinds) > 0 && !slices.ContainsFunc(f.Kinds, func(k string) bool {
			return strings.EqualFold(k, d.KindName()) || strings.EqualFold(k, d.Kind.String())
		}) {
			continue
		}
		entries = append(entries, Entry{Handle: h, Rank: ranks[h]})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Or(
			cmp.Compare(b.Rank, a.Rank),
			strings.Compare(g.Def(a.Handle).ID, g.Def(b.Handle).ID),
		)
	})
	if f.Limit > 0 && f.Limit < len(entries) {
		entries = entries[:f.Limit]
	}
	return entries
}
