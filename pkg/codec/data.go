package codec

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

// Data is the decoded payload of a record. Every implementation is an ordered
// sequence of elements of one data kind.
type Data interface {
	// Kind is the data kind written into the record header.
	Kind() DataKind
	// Len is the number of elements.
	Len() int
	// ByteSize is the encoded payload size in bytes.
	ByteSize() int
	// AppendTo appends the big-endian encoding of the payload to dst.
	AppendTo(dst []byte) ([]byte, error)
}

// NoDataValue is the empty payload of NO_DATA records.
type NoDataValue struct{}

func (NoDataValue) Kind() DataKind { return NoData }
func (NoDataValue) Len() int       { return 0 }
func (NoDataValue) ByteSize() int  { return 0 }

func (NoDataValue) AppendTo(dst []byte) ([]byte, error) {
	return dst, nil
}

// Bits is a BITARRAY payload: 16-bit flag words.
type Bits []uint16

func (Bits) Kind() DataKind  { return BitArray }
func (b Bits) Len() int      { return len(b) }
func (b Bits) ByteSize() int { return len(b) * 2 }

func (b Bits) AppendTo(dst []byte) ([]byte, error) {
	for _, v := range b {
		dst = binary.BigEndian.AppendUint16(dst, v)
	}
	return dst, nil
}

// Int16 is an INT2 payload.
type Int16 []int16

func (Int16) Kind() DataKind  { return Int16Kind }
func (v Int16) Len() int      { return len(v) }
func (v Int16) ByteSize() int { return len(v) * 2 }

func (v Int16) AppendTo(dst []byte) ([]byte, error) {
	for _, n := range v {
		dst = binary.BigEndian.AppendUint16(dst, uint16(n))
	}
	return dst, nil
}

// Int32 is an INT4 payload.
type Int32 []int32

func (Int32) Kind() DataKind  { return Int32Kind }
func (v Int32) Len() int      { return len(v) }
func (v Int32) ByteSize() int { return len(v) * 4 }

func (v Int32) AppendTo(dst []byte) ([]byte, error) {
	for _, n := range v {
		dst = binary.BigEndian.AppendUint32(dst, uint32(n))
	}
	return dst, nil
}

// Float64 is a REAL8 payload, stored on the wire as excess-64 base-16 floats.
type Float64 []float64

func (Float64) Kind() DataKind  { return Float64Kind }
func (v Float64) Len() int      { return len(v) }
func (v Float64) ByteSize() int { return len(v) * 8 }

func (v Float64) AppendTo(dst []byte) ([]byte, error) {
	for _, f := range v {
		b, err := EncodeReal8(f)
		if err != nil {
			return dst, err
		}
		dst = append(dst, b[:]...)
	}
	return dst, nil
}

// Float32 is a REAL4 payload. The format never defined it; every operation fails.
type Float32 []float32

// NewFloat32 panics: REAL4 payloads cannot be built.
func NewFloat32(values ...float32) Float32 {
	panic(ErrUnsupported)
}

func (Float32) Kind() DataKind  { return Float32Kind }
func (v Float32) Len() int      { return len(v) }
func (v Float32) ByteSize() int { return len(v) * 4 }

func (Float32) AppendTo(dst []byte) ([]byte, error) {
	return dst, ErrUnsupported
}

// ASCII is a string payload. Width is the fixed per-string size taken from the
// owning record type (REFLIBS, FONTS); zero means each string is padded to an
// even length.
type ASCII struct {
	Strings []string
	Width   int
}

// Strings builds an ASCII payload with even-length padding.
func Strings(values ...string) ASCII {
	return ASCII{Strings: values}
}

func (ASCII) Kind() DataKind { return ASCIIKind }
func (a ASCII) Len() int     { return len(a.Strings) }

func (a ASCII) ByteSize() int {
	if a.Width > 0 {
		return a.Width * len(a.Strings)
	}
	n := 0
	for _, s := range a.Strings {
		n += len(s) + len(s)%2
	}
	return n
}

func (a ASCII) AppendTo(dst []byte) ([]byte, error) {
	for _, s := range a.Strings {
		if a.Width > 0 {
			padded, err := PadString(s, a.Width)
			if err != nil {
				return dst, err
			}
			s = padded
		} else if len(s)%2 == 1 {
			s += "\x00"
		}
		dst = append(dst, s...)
	}
	return dst, nil
}

// PadString NUL-pads s to exactly n bytes. n must be even and not shorter than s.
func PadString(s string, n int) (string, error) {
	if n%2 == 1 {
		return "", errors.Wrapf(ErrArgument, "desired string length must be a multiple of 2; given %d", n)
	}
	if n < len(s) {
		return "", errors.Wrapf(ErrArgument, "desired string length %d is less than actual string length %d", n, len(s))
	}
	return s + strings.Repeat("\x00", n-len(s)), nil
}

// UnpadString strips trailing NUL bytes.
func UnpadString(s string) string {
	return strings.TrimRight(s, "\x00")
}

// DecodeData decodes a payload of the given kind. width is the fixed ASCII
// element size of the owning record type, or 0.
func DecodeData(kind DataKind, payload []byte, width int) (Data, error) {
	n := len(payload)
	switch kind {
	case NoData:
		if n != 0 {
			return nil, errors.Wrapf(ErrInvalidLength, "NO_DATA expects 0 bytes; got %d", n)
		}
		return NoDataValue{}, nil
	case BitArray:
		if n%2 != 0 {
			return nil, errors.Wrapf(ErrInvalidLength, "BITARRAY length %d is not a multiple of 2", n)
		}
		v := make(Bits, n/2)
		for i := range v {
			v[i] = binary.BigEndian.Uint16(payload[i*2:])
		}
		return v, nil
	case Int16Kind:
		if n%2 != 0 {
			return nil, errors.Wrapf(ErrInvalidLength, "INT2 length %d is not a multiple of 2", n)
		}
		v := make(Int16, n/2)
		for i := range v {
			v[i] = int16(binary.BigEndian.Uint16(payload[i*2:]))
		}
		return v, nil
	case Int32Kind:
		if n%4 != 0 {
			return nil, errors.Wrapf(ErrInvalidLength, "INT4 length %d is not a multiple of 4", n)
		}
		v := make(Int32, n/4)
		for i := range v {
			v[i] = int32(binary.BigEndian.Uint32(payload[i*4:]))
		}
		return v, nil
	case Float32Kind:
		return nil, ErrUnsupported
	case Float64Kind:
		if n%8 != 0 {
			return nil, errors.Wrapf(ErrInvalidLength, "REAL8 length %d is not a multiple of 8", n)
		}
		v := make(Float64, n/8)
		for i := range v {
			v[i] = DecodeReal8(payload[i*8 : i*8+8])
		}
		return v, nil
	case ASCIIKind:
		return decodeASCII(payload, width)
	default:
		return nil, errors.Wrapf(ErrUnknownDataKind, "data kind %d", kind)
	}
}

func decodeASCII(payload []byte, width int) (Data, error) {
	n := len(payload)
	if n%2 != 0 {
		return nil, errors.Wrapf(ErrInvalidLength, "ASCII records must have an even length; got %d", n)
	}
	if width <= 0 {
		return ASCII{Strings: []string{UnpadString(string(payload))}}, nil
	}
	if n%width != 0 {
		return nil, errors.Wrapf(ErrInvalidLength, "ASCII length %d is not a multiple of %d", n, width)
	}
	a := ASCII{Strings: make([]string, 0, n/width), Width: width}
	for off := 0; off < n; off += width {
		a.Strings = append(a.Strings, UnpadString(string(payload[off:off+width])))
	}
	return a, nil
}
