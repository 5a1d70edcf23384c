package unitcache

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/doxyfront/internal/doxml"
	"github.com/phobologic/doxyfront/internal/model"
	"github.com/phobologic/doxyfront/internal/ref"
)

const unitXML = `<?xml version="1.0"?>
<doxygen>
  <compounddef id="namespacens" kind="namespace" language="C++">
    <compoundname>ns</compoundname>
    <briefdescription><para>Core <ref refid="structns_1_1point" kindref="compound">point</ref> types.</para></briefdescription>
    <innerclass refid="structns_1_1point">ns::point</innerclass>
    <sectiondef kind="func">
      <memberdef kind="function" id="namespacens_1a1" static="maybe">
        <type>int</type>
        <name>area</name>
        <param><type>double</type><declname>r</declname></param>
      </memberdef>
    </sectiondef>
  </compounddef>
</doxygen>`

func openMemory(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := openMemory(t)
	content := []byte(unitXML)
	want := doxml.Import("namespacens.xml", content)
	require.Len(t, want.Definitions, 2)
	require.Len(t, want.Diagnostics, 1)

	_, ok, err := c.Get(ctx, "namespacens.xml", content)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "namespacens.xml", content, want))

	got, ok, err := c.Get(ctx, "namespacens.xml", content)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Diagnostics, got.Diagnostics)
	require.Len(t, got.Definitions, 2)

	ns := got.Definitions[0]
	assert.Equal(t, model.Namespace, ns.Kind)
	assert.Equal(t, "ns", ns.QualifiedName)
	assert.Equal(t, ref.None, ns.ScopeParent)
	assert.Equal(t, "Core point types.", ns.Brief.Plaintext())
	require.Len(t, ns.Members, 2)
	assert.Equal(t, ref.Symbolic, ns.Members[0].State)
	assert.Equal(t, "structns_1_1point", ns.Members[0].ID)

	fn := got.Definitions[1]
	assert.Equal(t, model.Function, fn.Kind)
	assert.Equal(t, "ns::area", fn.QualifiedName)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "double", fn.Params[0].Type.Plaintext())
}

func TestCacheKeyedByUnitAndContent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := openMemory(t)
	content := []byte(unitXML)
	require.NoError(t, c.Put(ctx, "a.xml", content, doxml.Import("a.xml", content)))

	_, ok, err := c.Get(ctx, "b.xml", content)
	require.NoError(t, err)
	assert.False(t, ok, "same content under another unit name")

	_, ok, err = c.Get(ctx, "a.xml", append(content, '\n'))
	require.NoError(t, err)
	assert.False(t, ok, "changed content")

	assert.Equal(t, Key("a.xml", content), Key("a.xml", content))
	assert.NotEqual(t, Key("a.xml", content), Key("b.xml", content))
}

func TestCacheUndecodableEntryIsMiss(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := openMemory(t)
	content := []byte(unitXML)
	require.NoError(t, c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(Key("u.xml", content), []byte("{not json"))
	}))

	_, ok, err := c.Get(ctx, "u.xml", content)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := openMemory(t)

	_, _, err := c.Get(ctx, "u.xml", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, c.Put(ctx, "u.xml", nil, doxml.Result{}), context.Canceled)
}

func TestCachePersistent(t *testing.T) {
	t.Parallel()

	_, err := Open(Config{})
	assert.ErrorIs(t, err, ErrPathRequired)

	dir := t.TempDir()
	ctx := context.Background()
	content := []byte(unitXML)

	c, err := Open(Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, "n.xml", content, doxml.Import("n.xml", content)))
	require.NoError(t, c.Close())

	c, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer c.Close()
	got, ok, err := c.Get(ctx, "n.xml", content)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Definitions, 2)
}
