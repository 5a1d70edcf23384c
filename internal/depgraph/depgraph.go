// Package depgraph renders include dependencies between directories as a
// Graphviz digraph.
package depgraph

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/phobologic/doxyfront/internal/graph"
	"github.com/phobologic/doxyfront/internal/model"
	"github.com/phobologic/doxyfront/internal/ref"
)

// DefaultDepth clusters directories one level below each top directory.
const DefaultDepth = 1

type folder struct {
	h     ref.Handle
	level int
}

type edge struct {
	from, to ref.Handle
}

type writer struct {
	g     *graph.Graph
	depth int
	out   *bufio.Writer
}

// Write emits the digraph of g. Every file is attributed to its deepest
// directory at most depth levels below a top directory, and each include
// whose target lives in another such directory adds to the edge between the
// two.
func Write(w io.Writer, g *graph.Graph, depth int) error {
	if depth < 0 {
		depth = 0
	}
	dw := &writer{g: g, depth: depth, out: bufio.NewWriter(w)}
	roots := dw.roots()

	var folders []folder
	rootOf := make(map[ref.Handle]ref.Handle)
	for _, r := range roots {
		for _, f := range dw.collect(r, 0) {
			folders = append(folders, f)
			rootOf[f.h] = r
		}
	}
	slices.SortStableFunc(folders, func(a, b folder) int { return cmp.Compare(a.level, b.level) })

	// Deeper folders come later and win.
	fileFolder := make(map[ref.Handle]ref.Handle)
	for _, f := range folders {
		for _, file := range dw.files(f.h, make(map[ref.Handle]bool)) {
			fileFolder[file] = f.h
		}
	}

	deps := make(map[ref.Handle]map[edge]int)
	for file, from := range fileFolder {
		for _, inc := range g.Def(file).Includes {
			if !inc.File.IsResolved() {
				continue
			}
			to, ok := fileFolder[inc.File.Target]
			if !ok || to == from {
				continue
			}
			root := rootOf[from]
			if deps[root] == nil {
				deps[root] = make(map[edge]int)
			}
			deps[root][edge{from, to}]++
		}
	}

	fmt.Fprint(dw.out, "digraph d {rankdir=LR;\n\n")
	for _, root := range roots {
		rootDeps := deps[root]
		if len(rootDeps) == 0 {
			continue
		}
		prefix := sanitize(g.Def(root).ID)
		interesting := make(map[ref.Handle]bool)
		for e := range rootDeps {
			interesting[e.from] = true
			interesting[e.to] = true
		}
		visible := make(map[ref.Handle]bool)
		seen := make(map[ref.Handle]bool)
		for _, r := range roots {
			dw.markVisible(r, interesting, visible, seen)
		}
		for _, r := range roots {
			dw.subgraph(r, 0, visible, prefix)
		}

		edges := make([]edge, 0, len(rootDeps))
		for e := range rootDeps {
			edges = append(edges, e)
		}
		slices.SortFunc(edges, func(a, b edge) int {
			return cmp.Or(cmp.Compare(a.from, b.from), cmp.Compare(a.to, b.to))
		})
		for _, e := range edges {
			fmt.Fprintf(dw.out, "%s_%s -> %s_%s [label=%d];\n",
				prefix, sanitize(g.Def(e.from).ID), prefix, sanitize(g.Def(e.to).ID), rootDeps[e])
		}
	}
	fmt.Fprint(dw.out, "}\n")
	return errors.Wrap(dw.out.Flush(), "writing dependency graph")
}

// roots returns the directories no other directory contains, in arena order.
func (w *writer) roots() []ref.Handle {
	var dirs []ref.Handle
	nested := make(map[ref.Handle]bool)
	for h, d := range w.g.All() {
		if d.Kind != model.Directory {
			continue
		}
		dirs = append(dirs, h)
		for _, m := range w.subdirs(h) {
			nested[m] = true
		}
	}
	return slices.DeleteFunc(dirs, func(h ref.Handle) bool { return nested[h] })
}

func (w *writer) subdirs(h ref.Handle) []ref.Handle {
	var out []ref.Handle
	for _, m := range w.g.Members(h) {
		if w.g.Def(m).Kind == model.Directory {
			out = append(out, m)
		}
	}
	return out
}

// collect returns h and its subdirectories down to the depth limit.
func (w *writer) collect(h ref.Handle, level int) []folder {
	out := []folder{{h, level}}
	if level < w.depth {
		for _, m := range w.subdirs(h) {
			out = append(out, w.collect(m, level+1)...)
		}
	}
	return out
}

// files returns every file below h. seen guards against membership cycles.
func (w *writer) files(h ref.Handle, seen map[ref.Handle]bool) []ref.Handle {
	seen[h] = true
	var out []ref.Handle
	for _, m := range w.g.Members(h) {
		switch w.g.Def(m).Kind {
		case model.File:
			out = append(out, m)
		case model.Directory:
			if !seen[m] {
				out = append(out, w.files(m, seen)...)
			}
		}
	}
	return out
}

// markVisible marks h when it or one of its subdirectories is interesting.
func (w *writer) markVisible(h ref.Handle, interesting, visible, seen map[ref.Handle]bool) bool {
	seen[h] = true
	found := interesting[h]
	for _, m := range w.subdirs(h) {
		if !seen[m] && w.markVisible(m, interesting, visible, seen) {
			found = true
		}
	}
	if found {
		visible[h] = true
	}
	return found
}

func (w *writer) subgraph(h ref.Handle, level int, visible map[ref.Handle]bool, prefix string) {
	if !visible[h] {
		return
	}
	d := w.g.Def(h)
	id := sanitize(d.ID)
	if level >= w.depth {
		fmt.Fprintf(w.out, "%s_%s[label=%s, shape=folder];\n", prefix, id, strconv.Quote(d.Name))
		return
	}
	fmt.Fprintf(w.out, "subgraph cluster_%s_%s {\n", prefix, id)
	fmt.Fprintf(w.out, "%s_%s[label=%s, shape=none];\n", prefix, id, strconv.Quote(d.Name))
	for _, m := range w.subdirs(h) {
		w.subgraph(m, level+1, visible, prefix)
	}
	fmt.Fprint(w.out, "}\n")
}

// sanitize turns an id into a DOT identifier.
func sanitize(id string) string {
	return strings.ReplaceAll(id, "-", "__")
}
