package doctree

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/doxyfront/internal/graph"
	"github.com/phobologic/doxyfront/internal/markup"
	"github.com/phobologic/doxyfront/internal/metrics"
	"github.com/phobologic/doxyfront/internal/model"
	"github.com/phobologic/doxyfront/internal/ref"
)

func def(k model.Kind, id, qualified string, members ...string) *model.Definition {
	d := model.New(k, id)
	d.QualifiedName = qualified
	d.Unit = id + ".xml"
	for _, m := range members {
		d.Members = append(d.Members, ref.NewSymbolic(m, m))
	}
	return d
}

func fixture(t *testing.T) *graph.Graph {
	t.Helper()

	ns := def(model.Namespace, "ns", "ns", "shape", "beta", "alpha", "size")
	ns.Brief = markup.New(markup.NewFormat(markup.Paragraph,
		markup.NewText("See"), markup.NewCrossRef(ref.NewSymbolic("nowhere", "a<b"))))

	shape := def(model.Class, "shape", "ns::Shape", "area", "width", "ctor")
	shape.ClassKind = model.Struct
	shape.Location = model.Location{File: "shape.h", Line: 12}

	area := def(model.Function, "area", "ns::Shape::area")
	area.Type = markup.Plain("double")
	area.Detailed = markup.New(markup.NewFormat(markup.Paragraph, markup.NewText("Computed lazily.")))
	ctor := def(model.Function, "ctor", "ns::Shape::Shape")
	ctor.FunctionKind = model.Constructor
	width := def(model.Variable, "width", "ns::Shape::width")
	width.Type = markup.Plain("int")

	beta := def(model.Function, "beta", "ns::Beta")
	alpha := def(model.Function, "alpha", "ns::alpha")

	size := def(model.Typedef, "size", "ns::size_type")
	size.Type = markup.Plain("unsigned long")
	size.Listing = "typedef unsigned long size_type;"

	file := def(model.File, "shape_h", "shape.h", "shape")

	g, _ := graph.Build(context.Background(),
		[]*model.Definition{ns, shape, area, ctor, width, beta, alpha, size, file},
		graph.DefaultOptions())
	return g
}

func handle(t *testing.T, g *graph.Graph, qualified string) ref.Handle {
	t.Helper()
	for h, d := range g.All() {
		if d.QualifiedName == qualified {
			return h
		}
	}
	t.Fatalf("no definition %q", qualified)
	return ref.None
}

func readPage(t *testing.T, dir string, g *graph.Graph, h ref.Handle) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, g.URL(h)))
	require.NoError(t, err)
	return string(data)
}

func TestWritePages(t *testing.T) {
	t.Parallel()

	g := fixture(t)
	out := filepath.Join(t.TempDir(), "html")
	m := metrics.New()

	n, err := Write(context.Background(), g, out, Options{Jobs: 3, Metrics: m})
	require.NoError(t, err)

	want := 0
	for h := range g.Pages() {
		want++
		assert.FileExists(t, filepath.Join(out, g.URL(h)))
	}
	assert.Equal(t, want, n)
	assert.Equal(t, float64(want), testutil.ToFloat64(m.PagesTotal))
	assert.FileExists(t, filepath.Join(out, StyleSheet))
	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.FileExists(t, filepath.Join(out, "files.html"))

	// Class members are anchors, not pages.
	area := g.Def(handle(t, g, "ns::Shape::area"))
	assert.Empty(t, area.Page)
	assert.NoFileExists(t, filepath.Join(out, area.ID+".html"))
}

func TestClassPage(t *testing.T) {
	t.Parallel()

	g := fixture(t)
	out := t.TempDir()
	_, err := Write(context.Background(), g, out, Options{})
	require.NoError(t, err)

	shape := handle(t, g, "ns::Shape")
	html := readPage(t, out, g, shape)

	assert.Contains(t, html, "<title>struct ns::Shape</title>")
	assert.Contains(t, html, `<nav class="breadcrumbs"><a href="namespace-ns.html">ns</a> / </nav>`)
	assert.Contains(t, html, "Defined at shape.h:12")

	area := g.Def(handle(t, g, "ns::Shape::area"))
	assert.Contains(t, html, `<dt id="`+area.ID+`">`)
	// Anchored members carry their details inline.
	assert.Contains(t, html, "Computed lazily.")

	ctorAt := strings.Index(html, "<h2>Constructors</h2>")
	funcAt := strings.Index(html, "<h2>Functions</h2>")
	varAt := strings.Index(html, "<h2>Variables</h2>")
	require.True(t, ctorAt >= 0 && funcAt >= 0 && varAt >= 0, html)
	assert.Less(t, ctorAt, funcAt)
	assert.Less(t, funcAt, varAt)
}

func TestNamespacePage(t *testing.T) {
	t.Parallel()

	g := fixture(t)
	out := t.TempDir()
	_, err := Write(context.Background(), g, out, Options{Jobs: 1})
	require.NoError(t, err)

	html := readPage(t, out, g, handle(t, g, "ns"))

	// Sorted by case-folded name.
	alphaAt := strings.Index(html, ">alpha</a>")
	betaAt := strings.Index(html, ">Beta</a>")
	require.True(t, alphaAt >= 0 && betaAt >= 0, html)
	assert.Less(t, alphaAt, betaAt)

	// Types come before functions.
	assert.Less(t, strings.Index(html, "<h2>Types</h2>"), strings.Index(html, "<h2>Functions</h2>"))

	// A dangling reference is escaped text, not a link.
	assert.Contains(t, html, "See a&lt;b")
	assert.NotContains(t, html, `href="nowhere`)
}

func TestListingHighlighted(t *testing.T) {
	t.Parallel()

	g := fixture(t)
	out := t.TempDir()
	_, err := Write(context.Background(), g, out, Options{})
	require.NoError(t, err)

	html := readPage(t, out, g, handle(t, g, "ns::size_type"))
	assert.Contains(t, html, `<pre class="listing"><span class="hl-keyword">typedef</span>`)
}

func TestRootPages(t *testing.T) {
	t.Parallel()

	g := fixture(t)
	out := t.TempDir()
	_, err := Write(context.Background(), g, out, Options{})
	require.NoError(t, err)

	index := readPage(t, out, g, g.ScopeRoot())
	assert.Contains(t, index, "<title>Symbols</title>")
	assert.Contains(t, index, `href="namespace-ns.html"`)
	assert.NotContains(t, index, `<pre class="signature">`)

	files := readPage(t, out, g, g.FileRoot())
	assert.Contains(t, files, "<title>Files</title>")
	assert.Contains(t, files, "<h2>Files</h2>")
}

func TestWriteCancelled(t *testing.T) {
	t.Parallel()

	g := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Write(ctx, g, t.TempDir(), Options{Jobs: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
