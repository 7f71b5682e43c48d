package schema

import (
	"bytes"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
)

var testTime = time.Date(2008, time.December, 4, 14, 30, 5, 0, time.UTC)

func buildLibrary(t *testing.T) *grammar.Group {
	t.Helper()
	lib := NewLibrary("TEST.DB", DefaultUserUnits, DefaultDBUnits, testTime)

	sub := NewStructure("sub", testTime)
	AddElement(sub, NewBoundary(1, 0, []int32{0, 0, 0, 10, 10, 10, 10, 0, 0, 0}))
	path, err := NewPath(2, 0, 1, 20, []int32{0, 0, 100, 0})
	require.NoError(t, err)
	AddProperty(path, NewProperty(1, "net"))
	AddElement(sub, path)
	AddElement(sub, NewCustomPath(2, 0, 20, 5, 7, []int32{0, 0, 0, 100}))
	AddElement(sub, NewNode(3, 0, []int32{5, 5}))
	AddElement(sub, NewBox(4, 0, []int32{0, 0, 0, 1, 1, 1, 1, 0, 0, 0}))
	AddStructure(lib, sub)

	top := NewStructure("top", testTime)
	text := NewText(5, 0, 50, 50, "label")
	require.NoError(t, SetFont(text, 2))
	require.NoError(t, SetAnchor(text, "c"))
	SetAngle(Transform(text, true), 90)
	AddElement(top, text)
	sref := NewSRef("sub", 100, 100)
	strans := NewStrans(true, false, false)
	SetMag(strans, 2)
	sref.SetGroup(Strans, strans)
	AddElement(top, sref)
	AddElement(top, NewARef("sub", 3, 2, []int32{0, 0, 300, 0, 0, 200}))
	AddStructure(lib, top)
	return lib
}

func TestLibrary_RoundTrip(t *testing.T) {
	lib := buildLibrary(t)

	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	require.NoError(t, grammar.Serialize(w, lib))
	require.NoError(t, w.Flush())
	written := append([]byte(nil), buf.Bytes()...)

	parsed, err := grammar.Parse(codec.NewReader(&buf), Library)
	require.NoError(t, err)

	assert.Equal(t, "TEST.DB", Name(parsed))
	user, db, err := Units(parsed)
	require.NoError(t, err)
	assert.Equal(t, 0.001, user)
	assert.Equal(t, 1e-9, db)
	meters, err := MeterUnits(parsed)
	require.NoError(t, err)
	assert.InDelta(t, 1e-6, meters, 1e-18)

	structures := Structures(parsed)
	require.Len(t, structures, 2)

	var kinds []string
	for _, e := range Elements(structures[0]) {
		k, err := Kind(e)
		require.NoError(t, err)
		kinds = append(kinds, k)
	}
	assert.Equal(t, []string{"boundary", "path", "path", "node", "box"}, kinds)

	top, err := FindStructure(parsed, "top")
	require.NoError(t, err)
	elems := Elements(top)
	require.Len(t, elems, 3)

	text := elems[0]
	assert.Equal(t, "label", Name(text))
	assert.Equal(t, 2, Font(text))
	assert.Equal(t, "c", Anchor(text))
	assert.Equal(t, 90.0, Angle(Transform(text, false)))
	assert.Equal(t, []int32{50, 50}, XY(text))

	sref := elems[1]
	assert.Equal(t, "sub", Name(sref))
	reflect, absMag, absAngle := StransFlags(Transform(sref, false))
	assert.True(t, reflect)
	assert.False(t, absMag)
	assert.False(t, absAngle)
	assert.Equal(t, 2.0, Mag(Transform(sref, false)))
	assert.Equal(t, 0.0, Angle(Transform(sref, false)))

	var again bytes.Buffer
	w = codec.NewWriter(&again)
	require.NoError(t, grammar.Serialize(w, parsed))
	require.NoError(t, w.Flush())
	assert.Equal(t, written, again.Bytes())
}

func TestTimes(t *testing.T) {
	v := EncodeTimes(testTime, testTime.Add(time.Hour))
	assert.Equal(t, codec.Int16{108, 12, 4, 14, 30, 5, 108, 12, 4, 15, 30, 5}, v)

	a, b, err := DecodeTimes(codec.NewRecord(codec.BgnStr, v))
	require.NoError(t, err)
	assert.True(t, a.Equal(testTime))
	assert.True(t, b.Equal(testTime.Add(time.Hour)))

	_, _, err = DecodeTimes(codec.NewRecord(codec.Header, codec.Int16{5}))
	assert.True(t, errors.Is(err, ErrMalformedRecord))
}

func TestText_Presentation(t *testing.T) {
	text := NewText(1, 0, 0, 0, "x")
	assert.Equal(t, 0, Font(text))
	assert.Equal(t, "nw", Anchor(text))

	for _, anchor := range []string{"nw", "n", "ne", "w", "c", "e", "sw", "s", "se"} {
		require.NoError(t, SetAnchor(text, anchor))
		assert.Equal(t, anchor, Anchor(text))
	}

	require.NoError(t, SetFont(text, 3))
	require.NoError(t, SetAnchor(text, "s"))
	assert.Equal(t, 3, Font(text))
	assert.Equal(t, uint16(0x0039), text.Record(codec.Presentation).Bits()[0])

	assert.True(t, errors.Is(SetFont(text, 4), ErrInvalidFont))
	assert.True(t, errors.Is(SetAnchor(text, "middle"), ErrInvalidAnchor))
}

func TestPath_Types(t *testing.T) {
	for _, pt := range []int16{0, 1, 2} {
		p, err := NewPath(1, 0, pt, 10, []int32{0, 0, 1, 1})
		require.NoError(t, err)
		assert.Equal(t, pt, PathType(p))
		assert.ErrorIs(t, SetExtensions(p, 1, 1), ErrNotCustomPath)
	}

	_, err := NewPath(1, 0, 3, 10, []int32{0, 0, 1, 1})
	assert.True(t, errors.Is(err, ErrInvalidPathType))
	_, err = NewPath(1, 0, 4, 10, []int32{0, 0, 1, 1})
	assert.True(t, errors.Is(err, ErrInvalidPathType))

	custom := NewCustomPath(1, 0, 10, 1, 2, []int32{0, 0, 1, 1})
	assert.Equal(t, int16(4), PathType(custom))
	require.NoError(t, SetExtensions(custom, 3, 4))
	assert.Equal(t, []int32{3}, custom.Record(codec.BgnExtn).Int32s())
}

func TestKind_NotAnElement(t *testing.T) {
	_, err := Kind(NewStructure("s", testTime))
	assert.True(t, errors.Is(err, ErrNotAnElement))

	_, err = FindStructure(NewLibrary("L", 1, 1, testTime), "nope")
	assert.True(t, errors.Is(err, ErrMissingStructure))
}

func TestLibrary_ParsesOptionalHeaderRecords(t *testing.T) {
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	for _, rec := range []*codec.Record{
		codec.NewRecord(codec.Header, codec.Int16{600}),
		codec.NewRecord(codec.BgnLib, EncodeTimes(testTime, testTime)),
		codec.NewRecord(codec.LibName, codec.Strings("FULL")),
		codec.NewRecord(codec.RefLibs, codec.Strings("lib1", "lib2")),
		codec.NewRecord(codec.Fonts, codec.Strings("f0", "f1", "f2", "f3")),
		codec.NewRecord(codec.Generations, codec.Int16{3}),
		codec.NewRecord(codec.Format, codec.Int16{1}),
		codec.NewRecord(codec.Mask, codec.Strings("1 2 3")),
		codec.NewRecord(codec.Mask, codec.Strings("4")),
		codec.NewRecord(codec.EndMasks, nil),
		codec.NewRecord(codec.Units, codec.Float64{0.001, 1e-9}),
		codec.NewRecord(codec.EndLib, nil),
	} {
		require.NoError(t, w.Write(rec))
	}
	require.NoError(t, w.Flush())

	lib, err := grammar.Parse(codec.NewReader(&buf), Library)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib1", "lib2"}, lib.Record(codec.RefLibs).Strings())
	assert.Equal(t, []string{"f0", "f1", "f2", "f3"}, lib.Record(codec.Fonts).Strings())
	assert.Equal(t, 2, lib.Len(codec.Mask))
	assert.True(t, lib.Has(codec.EndMasks))
	assert.Empty(t, Structures(lib))
}
