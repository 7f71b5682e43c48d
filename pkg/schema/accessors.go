package schema

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
)

// STRANS flag bits.
const (
	ReflectX uint16 = 0x8000
	AbsMag   uint16 = 0x0004
	AbsAngle uint16 = 0x0002
)

// PRESENTATION field masks.
const (
	fontMask       uint16 = 0x0030
	verticalMask   uint16 = 0x000c
	horizontalMask uint16 = 0x0003
)

// anchors maps compass points to the vertical and horizontal justification
// bits of a PRESENTATION word.
var anchors = map[string]uint16{
	"nw": 0x0 | 0x0, "n": 0x0 | 0x1, "ne": 0x0 | 0x2,
	"w": 0x4 | 0x0, "c": 0x4 | 0x1, "e": 0x4 | 0x2,
	"sw": 0x8 | 0x0, "s": 0x8 | 0x1, "se": 0x8 | 0x2,
}

// EncodeTimes packs two timestamps into the twelve INT2 values of a BGNLIB or
// BGNSTR record: year-1900, month, day, hour, minute, second, twice.
func EncodeTimes(a, b time.Time) codec.Int16 {
	v := make(codec.Int16, 0, 12)
	for _, t := range []time.Time{a, b} {
		v = append(v, int16(t.Year()-1900), int16(t.Month()), int16(t.Day()),
			int16(t.Hour()), int16(t.Minute()), int16(t.Second()))
	}
	return v
}

// DecodeTimes unpacks a BGNLIB or BGNSTR record. For BGNLIB the times are
// last modification and last access; for BGNSTR, last modification and
// creation. Times are returned in UTC.
func DecodeTimes(rec *codec.Record) (time.Time, time.Time, error) {
	v := rec.Int16s()
	if len(v) != 12 {
		return time.Time{}, time.Time{}, errors.Wrapf(ErrMalformedRecord, "%s holds %d values", rec.Name(), len(v))
	}
	at := func(p codec.Int16) time.Time {
		return time.Date(int(p[0])+1900, time.Month(p[1]), int(p[2]), int(p[3]), int(p[4]), int(p[5]), 0, time.UTC)
	}
	return at(v[:6]), at(v[6:]), nil
}

// Units returns the user and database units of a library.
func Units(lib *grammar.Group) (user, db float64, err error) {
	rec := lib.Record(codec.Units)
	if rec == nil {
		return 0, 0, errors.Wrap(ErrMalformedRecord, "library has no UNITS")
	}
	v := rec.Float64s()
	if len(v) != 2 {
		return 0, 0, errors.Wrapf(ErrMalformedRecord, "UNITS holds %d values", len(v))
	}
	return v[0], v[1], nil
}

// MeterUnits returns the size of a user unit in meters.
func MeterUnits(lib *grammar.Group) (float64, error) {
	user, db, err := Units(lib)
	if err != nil {
		return 0, err
	}
	return db / user, nil
}

// Name returns the name of a library, structure or reference, or the string
// of a text element.
func Name(g *grammar.Group) string {
	for _, t := range []codec.RecordType{codec.LibName, codec.StrName, codec.SName, codec.String} {
		if _, ok := g.Grammar().Lookup(t); ok {
			if rec := g.Record(t); rec != nil {
				return rec.Text()
			}
		}
	}
	return ""
}

// SetName replaces the name record of a library, structure or reference.
func SetName(g *grammar.Group, name string) {
	for _, t := range []codec.RecordType{codec.LibName, codec.StrName, codec.SName} {
		if _, ok := g.Grammar().Lookup(t); ok {
			g.SetRecord(strRec(t, name))
			return
		}
	}
	panic("group " + g.Grammar().String() + " has no name")
}

// Layer returns the layer of an element.
func Layer(g *grammar.Group) (int16, bool) {
	return firstInt16(g, codec.Layer)
}

// XY returns the coordinates of an element.
func XY(g *grammar.Group) []int32 {
	if rec := g.Record(codec.XY); rec != nil {
		return rec.Int32s()
	}
	return nil
}

// Kind returns the element kind, e.g. "boundary", or an error for groups that
// are not elements.
func Kind(g *grammar.Group) (string, error) {
	for _, alt := range Element.Alternatives() {
		if g.Grammar() == alt {
			return alt.String(), nil
		}
	}
	return "", errors.Wrapf(ErrNotAnElement, "%s", g.Grammar())
}

// Elements returns the elements of a structure.
func Elements(str *grammar.Group) []*grammar.Group {
	return str.Groups(Element)
}

// Structures returns the structures of a library.
func Structures(lib *grammar.Group) []*grammar.Group {
	return lib.Groups(Structure)
}

// FindStructure returns the structure of lib named name.
func FindStructure(lib *grammar.Group, name string) (*grammar.Group, error) {
	for _, str := range Structures(lib) {
		if Name(str) == name {
			return str, nil
		}
	}
	return nil, errors.Wrapf(ErrMissingStructure, "%q", name)
}

// PathType returns the path type of a path or text element; 0 when absent.
func PathType(g *grammar.Group) int16 {
	v, _ := firstInt16(g, codec.PathType)
	return v
}

// SetExtensions sets the begin and end extensions of a type 4 path.
func SetExtensions(path *grammar.Group, bgn, end int32) error {
	if path.Grammar() != Path || PathType(path) != 4 {
		return ErrNotCustomPath
	}
	path.SetRecord(codec.NewRecord(codec.BgnExtn, codec.Int32{bgn}))
	path.SetRecord(codec.NewRecord(codec.EndExtn, codec.Int32{end}))
	return nil
}

// StransFlags returns the flags of a transformation block.
func StransFlags(strans *grammar.Group) (reflectX, absMag, absAngle bool) {
	rec := strans.Record(codec.Strans)
	if rec == nil || len(rec.Bits()) == 0 {
		return false, false, false
	}
	bits := rec.Bits()[0]
	return bits&ReflectX != 0, bits&AbsMag != 0, bits&AbsAngle != 0
}

// SetMag sets the magnification of a transformation block.
func SetMag(strans *grammar.Group, mag float64) {
	strans.SetRecord(codec.NewRecord(codec.Mag, codec.Float64{mag}))
}

// SetAngle sets the rotation, in degrees counterclockwise, of a
// transformation block.
func SetAngle(strans *grammar.Group, angle float64) {
	strans.SetRecord(codec.NewRecord(codec.Angle, codec.Float64{angle}))
}

// Angle returns the rotation of a transformation block; 0 when absent.
func Angle(strans *grammar.Group) float64 {
	return firstFloat64(strans, codec.Angle, 0)
}

// Mag returns the magnification of a transformation block; 1 when absent.
func Mag(strans *grammar.Group) float64 {
	return firstFloat64(strans, codec.Mag, 1)
}

// Transform returns the transformation block of a text or reference
// element, creating an empty one when create is set.
func Transform(elem *grammar.Group, create bool) *grammar.Group {
	if s := elem.Group(Strans); s != nil || !create {
		return s
	}
	s := NewStrans(false, false, false)
	elem.SetGroup(Strans, s)
	return s
}

// Font returns the font number of a text element.
func Font(text *grammar.Group) int {
	return int(presentation(text)&fontMask) >> 4
}

// SetFont sets the font number (0-3) of a text element.
func SetFont(text *grammar.Group, font int) error {
	if font < 0 || font > 3 {
		return errors.Wrapf(ErrInvalidFont, "given %d", font)
	}
	setPresentation(text, presentation(text)&^fontMask|uint16(font)<<4)
	return nil
}

// Anchor returns the compass point (nw n ne w c e sw s se) a text element is
// justified to, or "" for a reserved bit pattern.
func Anchor(text *grammar.Group) string {
	bits := presentation(text) & (verticalMask | horizontalMask)
	for name, v := range anchors {
		if v == bits {
			return name
		}
	}
	return ""
}

// SetAnchor justifies a text element to a compass point.
func SetAnchor(text *grammar.Group, anchor string) error {
	v, ok := anchors[anchor]
	if !ok {
		return errors.Wrapf(ErrInvalidAnchor, "%q", anchor)
	}
	setPresentation(text, presentation(text)&^(verticalMask|horizontalMask)|v)
	return nil
}

func presentation(text *grammar.Group) uint16 {
	if rec := text.Record(codec.Presentation); rec != nil && len(rec.Bits()) > 0 {
		return rec.Bits()[0]
	}
	return 0
}

func setPresentation(text *grammar.Group, v uint16) {
	text.SetRecord(codec.NewRecord(codec.Presentation, codec.Bits{v}))
}

func firstInt16(g *grammar.Group, t codec.RecordType) (int16, bool) {
	if rec := g.Record(t); rec != nil && len(rec.Int16s()) > 0 {
		return rec.Int16s()[0], true
	}
	return 0, false
}

func firstFloat64(g *grammar.Group, t codec.RecordType, def float64) float64 {
	if rec := g.Record(t); rec != nil && len(rec.Float64s()) > 0 {
		return rec.Float64s()[0]
	}
	return def
}
