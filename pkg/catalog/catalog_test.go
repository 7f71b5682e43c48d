package catalog

import (
	"bytes"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
	"github.com/ssargent/gdsstream/pkg/schema"
)

var testTime = time.Date(2021, time.June, 7, 8, 9, 10, 0, time.UTC)

func setupCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func libraryStream(t *testing.T, names ...string) []byte {
	t.Helper()
	return namedLibraryStream(t, "CAT.DB", names...)
}

func namedLibraryStream(t *testing.T, libName string, names ...string) []byte {
	t.Helper()
	lib := schema.NewLibrary(libName, schema.DefaultUserUnits, schema.DefaultDBUnits, testTime)
	for i, name := range names {
		str := schema.NewStructure(name, testTime)
		schema.AddElement(str, schema.NewBoundary(int16(i), 0, []int32{0, 0, 0, 1, 1, 1, 0, 0}))
		schema.AddStructure(lib, str)
	}
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	require.NoError(t, grammar.Serialize(w, lib))
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func TestCatalog_ImportAndExport(t *testing.T) {
	c := setupCatalog(t)

	// Structures are exported in name order, so import them sorted to
	// compare the streams byte for byte.
	stream := libraryStream(t, "alpha", "beta", "gamma")
	res, err := c.Import(codec.NewReader(bytes.NewReader(stream)))
	require.NoError(t, err)
	assert.Equal(t, "CAT.DB", res.Library)
	assert.Equal(t, 3, res.Structures)
	assert.Equal(t, 0, res.Replaced)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, res.Names)

	hdr, err := c.Header()
	require.NoError(t, err)
	assert.Equal(t, "CAT.DB", schema.Name(hdr))

	var out bytes.Buffer
	w := codec.NewWriter(&out)
	require.NoError(t, c.Export(w))
	require.NoError(t, w.Flush())
	assert.Equal(t, stream, out.Bytes())
}

func TestCatalog_PutGetDelete(t *testing.T) {
	c := setupCatalog(t)

	str := schema.NewStructure("cell", testTime)
	schema.AddElement(str, schema.NewNode(1, 0, []int32{1, 2}))
	id, err := c.Put(str)
	require.NoError(t, err)
	assert.False(t, id.IsNil())

	got, err := c.Get("cell")
	require.NoError(t, err)
	assert.Equal(t, "cell", schema.Name(got))
	require.Len(t, schema.Elements(got), 1)
	kind, err := schema.Kind(schema.Elements(got)[0])
	require.NoError(t, err)
	assert.Equal(t, "node", kind)

	raw, err := c.Raw("cell")
	require.NoError(t, err)
	assert.Equal(t, byte(codec.BgnStr), raw[2])

	// Replacing keeps one entry with a new id
	schema.AddElement(str, schema.NewNode(2, 0, []int32{3, 4}))
	id2, err := c.Put(str)
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
	entries, err := c.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id2, entries[0].ID)
	assert.Equal(t, len(raw)+4+6+6+12+4, entries[0].Size)

	require.NoError(t, c.Delete("cell"))
	_, err = c.Get("cell")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(c.Delete("cell"), ErrNotFound))
}

func TestCatalog_PutRejectsNonStructures(t *testing.T) {
	c := setupCatalog(t)

	_, err := c.Put(schema.NewBoundary(1, 0, []int32{0, 0}))
	assert.Error(t, err)

	incomplete := grammar.NewGroup(schema.Structure)
	incomplete.SetRecord(codec.NewRecord(codec.StrName, codec.Strings("x")))
	_, err = c.Put(incomplete)
	assert.True(t, errors.Is(err, grammar.ErrMissingRequiredField))

	entries, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCatalog_NoHeader(t *testing.T) {
	c := setupCatalog(t)

	_, err := c.Header()
	assert.True(t, errors.Is(err, ErrNoHeader))

	var out bytes.Buffer
	assert.True(t, errors.Is(c.Export(codec.NewWriter(&out)), ErrNoHeader))
}

func TestCatalog_ImportReplaces(t *testing.T) {
	c := setupCatalog(t)

	_, err := c.Import(codec.NewReader(bytes.NewReader(libraryStream(t, "a", "b"))))
	require.NoError(t, err)
	res, err := c.Import(codec.NewReader(bytes.NewReader(libraryStream(t, "b", "c"))))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Replaced)

	entries, err := c.List()
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	var out bytes.Buffer
	w := codec.NewWriter(&out)
	require.NoError(t, c.ExportStructures(w, "c"))
	require.NoError(t, w.Flush())
	lib, err := grammar.Parse(codec.NewReader(&out), schema.Library)
	require.NoError(t, err)
	require.Len(t, schema.Structures(lib), 1)
	assert.Equal(t, "c", schema.Name(schema.Structures(lib)[0]))
}

func TestCatalog_ImportViolation(t *testing.T) {
	c := setupCatalog(t)

	stream := libraryStream(t, "a")
	// Drop ENDLIB
	_, err := c.Import(codec.NewReader(bytes.NewReader(stream[:len(stream)-4])))
	assert.True(t, errors.Is(err, grammar.ErrGrammarViolation))

	_, err = c.Get("a")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = c.Header()
	assert.True(t, errors.Is(err, ErrNoHeader))
}

func TestCatalog_FailedImportChangesNothing(t *testing.T) {
	c := setupCatalog(t)

	_, err := c.Import(codec.NewReader(bytes.NewReader(libraryStream(t, "keep"))))
	require.NoError(t, err)
	before, err := c.List()
	require.NoError(t, err)

	// Cut the stream right after the STRNAME of the second structure
	bad := namedLibraryStream(t, "BAD.DB", "leaked", "keep", "second")
	cut := bytes.Index(bad, []byte("second")) + len("second")
	_, err = c.Import(codec.NewReader(bytes.NewReader(bad[:cut])))
	assert.True(t, errors.Is(err, grammar.ErrGrammarViolation))

	hdr, err := c.Header()
	require.NoError(t, err)
	assert.Equal(t, "CAT.DB", schema.Name(hdr))
	after, err := c.List()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, err = c.Get("leaked")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCatalog_ImportRepeatedName(t *testing.T) {
	c := setupCatalog(t)

	res, err := c.Import(codec.NewReader(bytes.NewReader(libraryStream(t, "dup", "dup"))))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Structures)
	assert.Equal(t, 1, res.Replaced)

	entries, err := c.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// The first copy's data key was dropped with the batch
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: dataPrefix,
		UpperBound: prefixEnd(dataPrefix),
	})
	require.NoError(t, err)
	defer iter.Close()
	n := 0
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	assert.Equal(t, 1, n)
}

func TestCatalog_Lookup(t *testing.T) {
	c := setupCatalog(t)

	_, err := c.Lookup("cell")
	assert.True(t, errors.Is(err, ErrNotFound))

	str := schema.NewStructure("cell", testTime)
	schema.AddElement(str, schema.NewNode(1, 0, []int32{1, 2}))
	id, err := c.Put(str)
	require.NoError(t, err)
	raw, err := c.Raw("cell")
	require.NoError(t, err)

	e, err := c.Lookup("cell")
	require.NoError(t, err)
	assert.Equal(t, "cell", e.Name)
	assert.Equal(t, id, e.ID)
	assert.Equal(t, len(raw), e.Size)
	assert.Equal(t, id.Time(), e.Created)
}
