package codec

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// HeaderSize is the size of the length/type/kind prefix of every record.
	HeaderSize = 4
	// MaxRecordSize is the largest total record length the 16-bit length field holds.
	MaxRecordSize = 0xffff
)

// Record is a single typed record: a header plus its decoded payload.
type Record struct {
	Type RecordType
	Data Data
}

// RecordCodec converts single records to and from byte slices.
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// NewRecord creates a record of type t. A nil data is taken as NO_DATA. ASCII
// payloads inherit the fixed element width of t. It panics when t is not
// registered or data does not match the registered kind of t.
func NewRecord(t RecordType, data Data) *Record {
	desc, err := Descriptor(t)
	if err != nil {
		panic(err)
	}
	if data == nil {
		data = NoDataValue{}
	}
	if data.Kind() != desc.Kind {
		panic(fmt.Sprintf("record %s expects %s data; given %s", desc.Name, desc.Kind, data.Kind()))
	}
	if a, ok := data.(ASCII); ok {
		a.Width = desc.ElementSize
		data = a
	}
	return &Record{Type: t, Data: data}
}

// Encode serializes a record into its wire format:
// [Length(2)][Type(1)][Kind(1)][Payload], all integers big-endian.
func (c *RecordCodec) Encode(r *Record) ([]byte, error) {
	return r.AppendBinary(make([]byte, 0, r.Size()))
}

// Decode deserializes exactly one record from data.
func (c *RecordCodec) Decode(data []byte) (*Record, error) {
	if len(data) < HeaderSize {
		return nil, errors.Wrapf(ErrTruncated, "data too short for record header: %d bytes", len(data))
	}
	length := int(binary.BigEndian.Uint16(data[0:2]))
	if length < HeaderSize {
		return nil, errors.Wrapf(ErrNegativeLength, "%d", length-HeaderSize)
	}
	if len(data) < length {
		return nil, errors.Wrapf(ErrTruncated, "data too short for record length: %d < %d", len(data), length)
	}
	return decodeRecord(RecordType(data[2]), DataKind(data[3]), data[HeaderSize:length])
}

func decodeRecord(t RecordType, kind DataKind, payload []byte) (*Record, error) {
	desc, err := Descriptor(t)
	if err != nil {
		return nil, err
	}
	data, err := DecodeData(kind, payload, desc.ElementSize)
	if err != nil {
		return nil, err
	}
	return &Record{Type: t, Data: data}, nil
}

// AppendBinary appends the wire form of r to dst.
func (r *Record) AppendBinary(dst []byte) ([]byte, error) {
	size := r.Size()
	if size > MaxRecordSize {
		return dst, errors.Wrapf(ErrRecordTooLarge, "%s record is %d bytes", r.Type, size)
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(size))
	dst = append(dst, byte(r.Type), byte(r.Kind()))
	return r.data().AppendTo(dst)
}

// Size returns the total size of the record when encoded, header included.
func (r *Record) Size() int {
	return HeaderSize + r.data().ByteSize()
}

// Kind returns the data kind of the payload.
func (r *Record) Kind() DataKind {
	return r.data().Kind()
}

// Name returns the registry name of the record type.
func (r *Record) Name() string {
	return r.Type.String()
}

// data returns the payload, with ASCII strings taking the fixed width
// registered for the record type.
func (r *Record) data() Data {
	if r.Data == nil {
		return NoDataValue{}
	}
	if a, ok := r.Data.(ASCII); ok && a.Width == 0 {
		if desc, err := Descriptor(r.Type); err == nil && desc.ElementSize > 0 {
			a.Width = desc.ElementSize
			return a
		}
	}
	return r.Data
}

// Validate checks the record against the registry: the type must be known and
// valid, the payload kind must match, and the payload length must be within
// the registered bounds.
func (r *Record) Validate() error {
	desc, err := Descriptor(r.Type)
	if err != nil {
		return err
	}
	if !desc.Valid {
		return errors.Errorf("record type %s is not valid", desc.Name)
	}
	if r.Kind() != desc.Kind {
		return errors.Wrapf(ErrKindMismatch, "record %s expects %s; got %s", desc.Name, desc.Kind, r.Kind())
	}
	n := r.data().ByteSize()
	if n < desc.MinLen || n > desc.MaxLen {
		return errors.Wrapf(ErrInvalidLength,
			"data length of %d is not in the range expected for record %s (%d..%d)", n, desc.Name, desc.MinLen, desc.MaxLen)
	}
	return nil
}

// Int16s returns the INT2 payload, or nil.
func (r *Record) Int16s() []int16 {
	v, _ := r.Data.(Int16)
	return v
}

// Int32s returns the INT4 payload, or nil.
func (r *Record) Int32s() []int32 {
	v, _ := r.Data.(Int32)
	return v
}

// Float64s returns the REAL8 payload, or nil.
func (r *Record) Float64s() []float64 {
	v, _ := r.Data.(Float64)
	return v
}

// Bits returns the BITARRAY payload, or nil.
func (r *Record) Bits() []uint16 {
	v, _ := r.Data.(Bits)
	return v
}

// Strings returns the ASCII payload, or nil.
func (r *Record) Strings() []string {
	a, _ := r.Data.(ASCII)
	return a.Strings
}

// Text returns the first string of an ASCII payload.
func (r *Record) Text() string {
	if s := r.Strings(); len(s) > 0 {
		return s[0]
	}
	return ""
}

// String renders the record for humans, one record per line group.
func (r *Record) String() string {
	if r.Kind() == NoData {
		return r.Name()
	}
	switch r.Type {
	case String:
		return fmt.Sprintf("%s %q", r.Name(), r.Text())
	case BgnLib, BgnStr:
		v := r.Int16s()
		if len(v) != 12 {
			break
		}
		labels := [2]string{"LASTMOD", "LASTACC"}
		if r.Type == BgnStr {
			labels = [2]string{"LASTMOD", "CREATION"}
		}
		var b strings.Builder
		b.WriteString(r.Name())
		for i, label := range labels {
			t := v[i*6 : i*6+6]
			fmt.Fprintf(&b, "\n%s %02d/%02d/%02d %02d:%02d:%02d", label, t[0], t[1], t[2], t[3], t[4], t[5])
		}
		return b.String()
	case Units:
		v := r.Float64s()
		if len(v) != 2 {
			break
		}
		return fmt.Sprintf("UNITS\nUSERUNITS %s\nPHYSUNITS %s", formatFloat(v[0]), formatFloat(v[1]))
	case XY:
		v := r.Int32s()
		var b strings.Builder
		fmt.Fprintf(&b, "XY  %d", len(v)/2)
		for i := 0; i+1 < len(v); i += 2 {
			fmt.Fprintf(&b, ";\n  X %d; Y %d", v[i], v[i+1])
		}
		b.WriteString(";")
		return b.String()
	case Presentation:
		if v := r.Bits(); len(v) == 1 {
			return fmt.Sprintf("%s %d,%d,%d", r.Name(), v[0]>>4&3, v[0]>>2&3, v[0]&3)
		}
	case Strans:
		if v := r.Bits(); len(v) == 1 {
			return fmt.Sprintf("%s %d,%d,%d", r.Name(), v[0]>>15&1, v[0]>>2&1, v[0]>>1&1)
		}
	}
	return r.Name() + " " + formatData(r.data())
}

func formatData(d Data) string {
	var parts []string
	switch v := d.(type) {
	case Bits:
		for _, w := range v {
			parts = append(parts, fmt.Sprintf("%016b", w))
		}
	case Int16:
		for _, n := range v {
			parts = append(parts, strconv.Itoa(int(n)))
		}
	case Int32:
		for _, n := range v {
			parts = append(parts, strconv.Itoa(int(n)))
		}
	case Float64:
		for _, f := range v {
			parts = append(parts, formatFloat(f))
		}
	case ASCII:
		for _, str := range v.Strings {
			parts = append(parts, strconv.Quote(str))
		}
	}
	return strings.Join(parts, " ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
