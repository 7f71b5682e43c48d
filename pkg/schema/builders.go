package schema

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
)

// Library defaults.
const (
	DefaultVersion   = 5
	DefaultUserUnits = 0.001
	DefaultDBUnits   = 1e-9
)

// Errors
var (
	ErrInvalidFont      = errors.New("font must be 0-3")
	ErrInvalidAnchor    = errors.New("invalid text anchor")
	ErrInvalidPathType  = errors.New("path type must be 0, 1, 2 or 4")
	ErrNotCustomPath    = errors.New("extensions apply only to path type 4")
	ErrNotAnElement     = errors.New("group is not an element")
	ErrMalformedRecord  = errors.New("record does not have the expected shape")
	ErrMissingStructure = errors.New("structure not found")
)

func int16Rec(t codec.RecordType, v ...int16) *codec.Record {
	return codec.NewRecord(t, codec.Int16(v))
}

func strRec(t codec.RecordType, s string) *codec.Record {
	return codec.NewRecord(t, codec.Strings(s))
}

func xyRec(xy []int32) *codec.Record {
	return codec.NewRecord(codec.XY, codec.Int32(append([]int32(nil), xy...)))
}

// NewLibrary builds a library with the default version, the given units and
// both BGNLIB times set to now.
func NewLibrary(name string, userUnits, dbUnits float64, now time.Time) *grammar.Group {
	g := grammar.NewGroup(Library)
	g.SetRecord(int16Rec(codec.Header, DefaultVersion))
	g.SetRecord(codec.NewRecord(codec.BgnLib, EncodeTimes(now, now)))
	g.SetRecord(strRec(codec.LibName, name))
	g.SetRecord(codec.NewRecord(codec.Units, codec.Float64{userUnits, dbUnits}))
	g.SetRecord(codec.NewRecord(codec.EndLib, nil))
	return g
}

// NewStructure builds an empty structure whose times are set to now.
func NewStructure(name string, now time.Time) *grammar.Group {
	g := grammar.NewGroup(Structure)
	g.SetRecord(codec.NewRecord(codec.BgnStr, EncodeTimes(now, now)))
	g.SetRecord(strRec(codec.StrName, name))
	g.SetRecord(codec.NewRecord(codec.EndStr, nil))
	return g
}

func newElement(spec *grammar.Grammar, t codec.RecordType) *grammar.Group {
	g := grammar.NewGroup(spec)
	g.SetRecord(codec.NewRecord(t, nil))
	g.SetRecord(codec.NewRecord(codec.EndEl, nil))
	return g
}

// NewBoundary builds a filled polygon. xy is a closed list of x,y pairs.
func NewBoundary(layer, dataType int16, xy []int32) *grammar.Group {
	g := newElement(Boundary, codec.Boundary)
	g.SetRecord(int16Rec(codec.Layer, layer))
	g.SetRecord(int16Rec(codec.DataType, dataType))
	g.SetRecord(xyRec(xy))
	return g
}

// NewPath builds a path of type 0 (flush), 1 (round) or 2 (half-width
// extension). Type 4 paths are built with NewCustomPath.
func NewPath(layer, dataType, pathType int16, width int32, xy []int32) (*grammar.Group, error) {
	switch pathType {
	case 0, 1, 2:
	case 4:
		return nil, errors.Wrap(ErrInvalidPathType, "path type 4 requires extensions; use NewCustomPath")
	default:
		return nil, errors.Wrapf(ErrInvalidPathType, "given %d", pathType)
	}
	g := newElement(Path, codec.Path)
	g.SetRecord(int16Rec(codec.Layer, layer))
	g.SetRecord(int16Rec(codec.DataType, dataType))
	g.SetRecord(int16Rec(codec.PathType, pathType))
	g.SetRecord(codec.NewRecord(codec.Width, codec.Int32{width}))
	g.SetRecord(xyRec(xy))
	return g, nil
}

// NewCustomPath builds a type 4 path with explicit begin and end extensions.
func NewCustomPath(layer, dataType int16, width, bgnExtn, endExtn int32, xy []int32) *grammar.Group {
	g := newElement(Path, codec.Path)
	g.SetRecord(int16Rec(codec.Layer, layer))
	g.SetRecord(int16Rec(codec.DataType, dataType))
	g.SetRecord(int16Rec(codec.PathType, 4))
	g.SetRecord(codec.NewRecord(codec.Width, codec.Int32{width}))
	g.SetRecord(codec.NewRecord(codec.BgnExtn, codec.Int32{bgnExtn}))
	g.SetRecord(codec.NewRecord(codec.EndExtn, codec.Int32{endExtn}))
	g.SetRecord(xyRec(xy))
	return g
}

// NewText builds a text label anchored at x,y.
func NewText(layer, textType int16, x, y int32, s string) *grammar.Group {
	g := newElement(Text, codec.Text)
	g.SetRecord(int16Rec(codec.Layer, layer))
	g.SetRecord(int16Rec(codec.TextType, textType))
	g.SetRecord(xyRec([]int32{x, y}))
	g.SetRecord(strRec(codec.String, s))
	return g
}

// NewNode builds an electrical net node.
func NewNode(layer, nodeType int16, xy []int32) *grammar.Group {
	g := newElement(Node, codec.Node)
	g.SetRecord(int16Rec(codec.Layer, layer))
	g.SetRecord(int16Rec(codec.NodeType, nodeType))
	g.SetRecord(xyRec(xy))
	return g
}

// NewBox builds a box outline; xy holds five points.
func NewBox(layer, boxType int16, xy []int32) *grammar.Group {
	g := newElement(Box, codec.Box)
	g.SetRecord(int16Rec(codec.Layer, layer))
	g.SetRecord(int16Rec(codec.BoxType, boxType))
	g.SetRecord(xyRec(xy))
	return g
}

// NewSRef builds a reference to structure sname placed at x,y.
func NewSRef(sname string, x, y int32) *grammar.Group {
	g := newElement(SRef, codec.SRef)
	g.SetRecord(strRec(codec.SName, sname))
	g.SetRecord(xyRec([]int32{x, y}))
	return g
}

// NewARef builds a cols x rows array of sname. xy holds the origin, the
// column displacement point and the row displacement point.
func NewARef(sname string, cols, rows int16, xy []int32) *grammar.Group {
	g := newElement(ARef, codec.ARef)
	g.SetRecord(strRec(codec.SName, sname))
	g.SetRecord(int16Rec(codec.ColRow, cols, rows))
	g.SetRecord(xyRec(xy))
	return g
}

// NewProperty builds an attribute/value property.
func NewProperty(attr int16, value string) *grammar.Group {
	g := grammar.NewGroup(Property)
	g.SetRecord(int16Rec(codec.PropAttr, attr))
	g.SetRecord(strRec(codec.PropValue, value))
	return g
}

// NewStrans builds a transformation block with only the flag word set.
func NewStrans(reflectX, absMag, absAngle bool) *grammar.Group {
	g := grammar.NewGroup(Strans)
	var bits uint16
	if reflectX {
		bits |= ReflectX
	}
	if absMag {
		bits |= AbsMag
	}
	if absAngle {
		bits |= AbsAngle
	}
	g.SetRecord(codec.NewRecord(codec.Strans, codec.Bits{bits}))
	return g
}

// AddStructure appends a structure to a library.
func AddStructure(lib, str *grammar.Group) {
	lib.AddGroup(Structure, str)
}

// AddElement appends an element to a structure.
func AddElement(str, elem *grammar.Group) {
	str.AddGroup(Element, elem)
}

// AddProperty appends a property to an element.
func AddProperty(elem, prop *grammar.Group) {
	elem.AddGroup(Property, prop)
}
