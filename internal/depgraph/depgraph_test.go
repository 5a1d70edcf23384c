package depgraph

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/doxyfront/internal/graph"
	"github.com/phobologic/doxyfront/internal/model"
	"github.com/phobologic/doxyfront/internal/ref"
)

func def(k model.Kind, id, qualified string, members ...string) *model.Definition {
	d := model.New(k, id)
	d.QualifiedName = qualified
	for _, m := range members {
		d.Members = append(d.Members, ref.NewSymbolic(m, m))
	}
	return d
}

func includes(d *model.Definition, files ...string) *model.Definition {
	for _, f := range files {
		d.Includes = append(d.Includes, model.Include{File: ref.NewSymbolic(f, f)})
	}
	return d
}

func tree(t *testing.T) *graph.Graph {
	t.Helper()
	defs := []*model.Definition{
		def(model.Directory, "src", "src", "core", "util", "main_c"),
		def(model.Directory, "core", "src/core", "a_h"),
		def(model.Directory, "util", "src/util", "b_h", "c_h"),
		includes(def(model.File, "main_c", "src/main.c"), "a_h"),
		includes(def(model.File, "a_h", "src/core/a.h"), "b_h", "c_h", "a_h"),
		includes(def(model.File, "b_h", "src/util/b.h"), "a_h", "stdio"),
		def(model.File, "c_h", "src/util/c.h"),
	}
	g, _ := graph.Build(context.Background(), defs, graph.DefaultOptions())
	return g
}

func TestWriteDepthOne(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tree(t), 1))

	want := `digraph d {rankdir=LR;

subgraph cluster_directory__src_directory__src {
directory__src_directory__src[label="src", shape=none];
directory__src_directory__core__src[label="core", shape=folder];
directory__src_directory__util__src[label="util", shape=folder];
}
directory__src_directory__src -> directory__src_directory__core__src [label=1];
directory__src_directory__core__src -> directory__src_directory__util__src [label=2];
directory__src_directory__util__src -> directory__src_directory__core__src [label=1];
}
`
	assert.Equal(t, want, buf.String())
}

func TestWriteDepthZero(t *testing.T) {
	t.Parallel()

	// Every file belongs to the top directory, so nothing crosses.
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tree(t), 0))
	assert.Equal(t, "digraph d {rankdir=LR;\n\n}\n", buf.String())
}

func TestWriteNoDirectories(t *testing.T) {
	t.Parallel()

	g, _ := graph.Build(context.Background(), nil, graph.DefaultOptions())
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g, DefaultDepth))
	assert.Equal(t, "digraph d {rankdir=LR;\n\n}\n", buf.String())
}

func TestSanitize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "directory__core__src", sanitize("directory-core-src"))
}
