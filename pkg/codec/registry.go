package codec

import (
	"strconv"

	"github.com/pkg/errors"
)

// RecordType is the one-byte record type id found in every record header.
type RecordType uint8

// Record type ids, in wire order.
const (
	Header RecordType = iota
	BgnLib
	LibName
	Units
	EndLib
	BgnStr
	StrName
	EndStr
	Boundary
	Path
	SRef
	ARef
	Text
	Layer
	DataType
	Width
	XY
	EndEl
	SName
	ColRow
	TextNode
	Node
	TextType
	Presentation
	Spacing
	String
	Strans
	Mag
	Angle
	UInteger
	UString
	RefLibs
	Fonts
	PathType
	Generations
	AttrTable
	StypTable
	StrType
	ElFlags
	ElKey
	LinkType
	LinkKeys
	NodeType
	PropAttr
	PropValue
	Box
	BoxType
	Plex
	BgnExtn
	EndExtn
	TapeNum
	TapeCode
	StrClass
	Reserved
	Format
	Mask
	EndMasks
	LibDirSize
	SrfName
	LibSecur
	Border
	SoftFence
	HardFence
	SoftWire
	HardWire
	PathPort
	NodePort
	UserConstraint
	SpacerError
	Contact
)

// DataKind is the one-byte payload encoding id found in every record header.
type DataKind uint8

// Data kinds, in wire order.
const (
	NoData DataKind = iota
	BitArray
	Int16Kind
	Int32Kind
	Float32Kind
	Float64Kind
	ASCIIKind
)

// RecordTypeDescriptor is the static metadata for one record type.
type RecordTypeDescriptor struct {
	Name        string
	Kind        DataKind
	ElementSize int // bytes per element; 0 for NoData and variable-length ASCII
	MinLen      int // minimum payload length in bytes
	MaxLen      int // maximum payload length in bytes
	Valid       bool
}

// DataKindDescriptor is the static metadata for one data kind.
type DataKindDescriptor struct {
	Name        string
	Valid       bool
	ElementSize int
}

var recordTypes = [...]RecordTypeDescriptor{
	Header:         {"HEADER", Int16Kind, 2, 2, 2, true},
	BgnLib:         {"BGNLIB", Int16Kind, 2, 24, 24, true},
	LibName:        {"LIBNAME", ASCIIKind, 0, 0, 65530, true},
	Units:          {"UNITS", Float64Kind, 8, 16, 16, true},
	EndLib:         {"ENDLIB", NoData, 0, 0, 0, true},
	BgnStr:         {"BGNSTR", Int16Kind, 2, 24, 24, true},
	StrName:        {"STRNAME", ASCIIKind, 0, 2, 512, true},
	EndStr:         {"ENDSTR", NoData, 0, 0, 0, true},
	Boundary:       {"BOUNDARY", NoData, 0, 0, 0, true},
	Path:           {"PATH", NoData, 0, 0, 0, true},
	SRef:           {"SREF", NoData, 0, 0, 0, true},
	ARef:           {"AREF", NoData, 0, 0, 0, true},
	Text:           {"TEXT", NoData, 0, 0, 0, true},
	Layer:          {"LAYER", Int16Kind, 2, 2, 2, true},
	DataType:       {"DATATYPE", Int16Kind, 2, 2, 2, true},
	Width:          {"WIDTH", Int32Kind, 4, 4, 4, true},
	XY:             {"XY", Int32Kind, 4, 8, 65528, true},
	EndEl:          {"ENDEL", NoData, 0, 0, 0, true},
	SName:          {"SNAME", ASCIIKind, 0, 2, 65530, true},
	ColRow:         {"COLROW", Int16Kind, 2, 4, 4, true},
	TextNode:       {"TEXTNODE", NoData, 0, 0, 0, true},
	Node:           {"NODE", NoData, 0, 0, 0, true},
	TextType:       {"TEXTTYPE", Int16Kind, 2, 2, 2, true},
	Presentation:   {"PRESENTATION", BitArray, 2, 2, 2, true},
	Spacing:        {"SPACING", NoData, 0, 0, 0, false},
	String:         {"STRING", ASCIIKind, 0, 2, 512, true},
	Strans:         {"STRANS", BitArray, 2, 2, 2, true},
	Mag:            {"MAG", Float64Kind, 8, 8, 8, true},
	Angle:          {"ANGLE", Float64Kind, 8, 8, 8, true},
	UInteger:       {"UINTEGER", NoData, 0, 0, 0, false},
	UString:        {"USTRING", NoData, 0, 0, 0, false},
	RefLibs:        {"REFLIBS", ASCIIKind, 44, 88, 748, true},
	Fonts:          {"FONTS", ASCIIKind, 44, 176, 176, true},
	PathType:       {"PATHTYPE", Int16Kind, 2, 2, 2, true},
	Generations:    {"GENERATIONS", Int16Kind, 2, 2, 2, true},
	AttrTable:      {"ATTRTABLE", ASCIIKind, 0, 2, 44, true},
	StypTable:      {"STYPTABLE", NoData, 0, 0, 0, false},
	StrType:        {"STRTYPE", NoData, 0, 0, 0, false},
	ElFlags:        {"ELFLAGS", BitArray, 2, 2, 2, true},
	ElKey:          {"ELKEY", NoData, 0, 0, 0, false},
	LinkType:       {"LINKTYPE", NoData, 0, 0, 0, false},
	LinkKeys:       {"LINKKEYS", NoData, 0, 0, 0, false},
	NodeType:       {"NODETYPE", Int16Kind, 2, 2, 2, true},
	PropAttr:       {"PROPATTR", Int16Kind, 2, 2, 2, true},
	PropValue:      {"PROPVALUE", ASCIIKind, 0, 2, 126, true},
	Box:            {"BOX", NoData, 0, 0, 0, true},
	BoxType:        {"BOXTYPE", Int16Kind, 2, 2, 2, true},
	Plex:           {"PLEX", Int32Kind, 4, 4, 4, true},
	BgnExtn:        {"BGNEXTN", Int32Kind, 4, 4, 4, true},
	EndExtn:        {"ENDEXTN", Int32Kind, 4, 4, 4, true},
	TapeNum:        {"TAPENUM", Int16Kind, 2, 2, 2, true},
	TapeCode:       {"TAPECODE", Int16Kind, 2, 12, 12, true},
	StrClass:       {"STRCLASS", BitArray, 2, 2, 2, true},
	Reserved:       {"RESERVED", NoData, 0, 0, 0, false},
	Format:         {"FORMAT", Int16Kind, 2, 2, 2, true},
	Mask:           {"MASK", ASCIIKind, 0, 2, 65530, true},
	EndMasks:       {"ENDMASKS", NoData, 0, 0, 0, true},
	LibDirSize:     {"LIBDIRSIZE", Int16Kind, 2, 2, 2, true},
	SrfName:        {"SRFNAME", ASCIIKind, 0, 2, 65530, true},
	LibSecur:       {"LIBSECUR", Int16Kind, 2, 6, 192, true},
	Border:         {"BORDER", NoData, 0, 0, 0, true},
	SoftFence:      {"SOFTFENCE", NoData, 0, 0, 0, true},
	HardFence:      {"HARDFENCE", NoData, 0, 0, 0, true},
	SoftWire:       {"SOFTWIRE", NoData, 0, 0, 0, true},
	HardWire:       {"HARDWIRE", NoData, 0, 0, 0, true},
	PathPort:       {"PATHPORT", NoData, 0, 0, 0, true},
	NodePort:       {"NODEPORT", NoData, 0, 0, 0, true},
	UserConstraint: {"USERCONSTRAINT", NoData, 0, 0, 0, true},
	SpacerError:    {"SPACER_ERROR", NoData, 0, 0, 0, true},
	Contact:        {"CONTACT", NoData, 0, 0, 0, true},
}

var dataKinds = [...]DataKindDescriptor{
	NoData:      {"NO_DATA", true, 0},
	BitArray:    {"BITARRAY", true, 2},
	Int16Kind:   {"INT2", true, 2},
	Int32Kind:   {"INT4", true, 4},
	Float32Kind: {"REAL4", false, 4},
	Float64Kind: {"REAL8", true, 8},
	ASCIIKind:   {"ASCII", true, 0}, // string length is variable
}

var recordTypesByName = func() map[string]RecordType {
	m := make(map[string]RecordType, len(recordTypes))
	for i, d := range recordTypes {
		m[d.Name] = RecordType(i)
	}
	return m
}()

// NumRecordTypes is the number of registered record types.
const NumRecordTypes = len(recordTypes)

// Descriptor returns the registry entry for t.
func Descriptor(t RecordType) (RecordTypeDescriptor, error) {
	if int(t) >= len(recordTypes) {
		return RecordTypeDescriptor{}, errors.Wrapf(ErrUnknownRecordType, "record type %d", t)
	}
	return recordTypes[t], nil
}

// KindDescriptor returns the registry entry for k.
func KindDescriptor(k DataKind) (DataKindDescriptor, error) {
	if int(k) >= len(dataKinds) {
		return DataKindDescriptor{}, errors.Wrapf(ErrUnknownDataKind, "data kind %d", k)
	}
	return dataKinds[k], nil
}

// LookupRecordType finds a record type by its registry name, e.g. "XY".
func LookupRecordType(name string) (RecordType, bool) {
	t, ok := recordTypesByName[name]
	return t, ok
}

// Known reports whether t is a registered record type id.
func (t RecordType) Known() bool {
	return int(t) < len(recordTypes)
}

// String returns the registry name, or the numeric id for unknown types.
func (t RecordType) String() string {
	if !t.Known() {
		return strconv.Itoa(int(t))
	}
	return recordTypes[t].Name
}

// Known reports whether k is a registered data kind id.
func (k DataKind) Known() bool {
	return int(k) < len(dataKinds)
}

func (k DataKind) String() string {
	if !k.Known() {
		return strconv.Itoa(int(k))
	}
	return dataKinds[k].Name
}

// MinItems is the minimum element count for the record type.
func (d RecordTypeDescriptor) MinItems() int {
	return d.items(d.MinLen)
}

// MaxItems is the maximum element count for the record type.
func (d RecordTypeDescriptor) MaxItems() int {
	return d.items(d.MaxLen)
}

func (d RecordTypeDescriptor) items(n int) int {
	switch {
	case d.Kind == NoData:
		return 0
	case d.Kind == ASCIIKind && d.ElementSize == 0:
		return 1
	case d.ElementSize == 0:
		return 0
	default:
		return n / d.ElementSize
	}
}

// SingleValue reports whether records of this type always hold exactly one element.
func (d RecordTypeDescriptor) SingleValue() bool {
	if d.Kind == ASCIIKind {
		return d.ElementSize == 0
	}
	return d.ElementSize != 0 && d.ElementSize == d.MinLen && d.ElementSize == d.MaxLen
}
