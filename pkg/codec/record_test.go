package codec

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestRecordCodec_EncodeDecodeRoundTrip(t *testing.T) {
	codec := NewRecordCodec()

	testCases := []struct {
		name string
		rec  *Record
		size int
	}{
		{"no data", NewRecord(EndLib, nil), 4},
		{"header version", NewRecord(Header, Int16{5}), 6},
		{"bgnlib timestamps", NewRecord(BgnLib, Int16{108, 12, 4, 14, 30, 0, 108, 12, 4, 14, 30, 0}), 28},
		{"units", NewRecord(Units, Float64{0.001, 1e-9}), 20},
		{"xy", NewRecord(XY, Int32{0, 0, 0, 10, 10, 10, 10, 0, 0, 0}), 44},
		{"negative xy", NewRecord(XY, Int32{-2147483648, 2147483647}), 12},
		{"strans", NewRecord(Strans, Bits{0x8006}), 6},
		{"even string", NewRecord(LibName, Strings("HELLO!")), 10},
		{"odd string", NewRecord(LibName, Strings("HELLO")), 10},
		{"empty string", NewRecord(LibName, Strings("")), 4},
		{"fixed width fonts", NewRecord(Fonts, Strings("a", "b", "c", "d")), 180},
		{"reflibs", NewRecord(RefLibs, Strings("lib1", "lib2")), 92},
		{"angle", NewRecord(Angle, Float64{-123.456}), 12},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := codec.Encode(tc.rec)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if len(encoded) != tc.size {
				t.Fatalf("Expected %d encoded bytes, got %d", tc.size, len(encoded))
			}
			if tc.rec.Size() != tc.size {
				t.Errorf("Expected Size() %d, got %d", tc.size, tc.rec.Size())
			}

			decoded, err := codec.Decode(encoded)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if err := decoded.Validate(); err != nil {
				t.Fatalf("Record validation failed: %v", err)
			}
			if !reflect.DeepEqual(decoded, tc.rec) {
				t.Errorf("Round trip mismatch:\n got  %#v\n want %#v", decoded, tc.rec)
			}

			again, err := codec.Encode(decoded)
			if err != nil {
				t.Fatalf("Re-encode failed: %v", err)
			}
			if !bytes.Equal(again, encoded) {
				t.Errorf("Re-encoded bytes differ: %x != %x", again, encoded)
			}
		})
	}
}

func TestRecordCodec_HeaderBytes(t *testing.T) {
	codec := NewRecordCodec()
	want := []byte{0x00, 0x06, 0x00, 0x02, 0x00, 0x05}

	encoded, err := codec.Encode(NewRecord(Header, Int16{5}))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(encoded, want) {
		t.Fatalf("Expected %x, got %x", want, encoded)
	}

	rec, err := codec.Decode(want)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if rec.Type != Header || !reflect.DeepEqual(rec.Data, Int16{5}) {
		t.Errorf("Unexpected record %v", rec)
	}
}

func TestRecordCodec_OddStringPadding(t *testing.T) {
	codec := NewRecordCodec()

	encoded, err := codec.Encode(NewRecord(StrName, Strings("abc")))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := []byte{0x00, 0x08, 0x06, 0x06, 'a', 'b', 'c', 0x00}
	if !bytes.Equal(encoded, want) {
		t.Fatalf("Expected %x, got %x", want, encoded)
	}

	rec, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if rec.Text() != "abc" {
		t.Errorf("Expected %q, got %q", "abc", rec.Text())
	}
}

func TestRecordCodec_DecodeErrors(t *testing.T) {
	codec := NewRecordCodec()

	testCases := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", []byte{0x00, 0x04}, ErrTruncated},
		{"short payload", []byte{0x00, 0x08, 0x10, 0x03, 0x00, 0x00}, ErrTruncated},
		{"negative length", []byte{0x00, 0x02, 0x03, 0x05}, ErrNegativeLength},
		{"unknown type", []byte{0x00, 0x04, 0x46, 0x00}, ErrUnknownRecordType},
		{"unknown kind", []byte{0x00, 0x04, 0x00, 0x07}, ErrUnknownDataKind},
		{"real4", []byte{0x00, 0x08, 0x1b, 0x04, 0x00, 0x00, 0x00, 0x00}, ErrUnsupported},
		{"no data with payload", []byte{0x00, 0x06, 0x04, 0x00, 0x00, 0x00}, ErrInvalidLength},
		{"odd int4 payload", []byte{0x00, 0x06, 0x10, 0x03, 0x00, 0x00}, ErrInvalidLength},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Decode(tc.data)
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRecord_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		rec     *Record
		wantErr error
	}{
		{"valid header", NewRecord(Header, Int16{600}), nil},
		{"short bgnlib", &Record{Type: BgnLib, Data: Int16{1, 2}}, ErrInvalidLength},
		{"kind mismatch", &Record{Type: Layer, Data: Int32{1}}, ErrKindMismatch},
		{"single xy point", NewRecord(XY, Int32{1, 2}), nil},
		{"empty xy", NewRecord(XY, Int32{}), ErrInvalidLength},
		{"unknown type", &Record{Type: 200}, ErrUnknownRecordType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rec.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if err := (&Record{Type: Spacing}).Validate(); err == nil {
		t.Error("Expected error for a record type that is not valid")
	}
}

func TestNewRecord_Panics(t *testing.T) {
	testCases := []struct {
		name string
		fn   func()
	}{
		{"unknown type", func() { NewRecord(RecordType(70), nil) }},
		{"kind mismatch", func() { NewRecord(Layer, Int32{1}) }},
		{"nil data for int record", func() { NewRecord(Layer, nil) }},
		{"real4", func() { NewFloat32(1) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Expected panic")
				}
			}()
			tc.fn()
		})
	}
}

func TestRecord_String(t *testing.T) {
	testCases := []struct {
		name string
		rec  *Record
		want string
	}{
		{"no data", NewRecord(EndEl, nil), "ENDEL"},
		{"int2", NewRecord(Layer, Int16{3}), "LAYER 3"},
		{"string", NewRecord(String, Strings("hi")), `STRING "hi"`},
		{"units", NewRecord(Units, Float64{0.001, 1e-9}), "UNITS\nUSERUNITS 0.001\nPHYSUNITS 1e-09"},
		{"xy", NewRecord(XY, Int32{1, 2, 3, 4}), "XY  2;\n  X 1; Y 2;\n  X 3; Y 4;"},
		{"presentation", NewRecord(Presentation, Bits{0x0016}), "PRESENTATION 1,1,2"},
		{"strans", NewRecord(Strans, Bits{0x8004}), "STRANS 1,1,0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rec.String(); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}

	bgn := NewRecord(BgnStr, Int16{108, 1, 2, 3, 4, 5, 109, 6, 7, 8, 9, 10}).String()
	if !strings.Contains(bgn, "LASTMOD 108/01/02 03:04:05") || !strings.Contains(bgn, "CREATION 109/06/07 08:09:10") {
		t.Errorf("Unexpected BGNSTR dump %q", bgn)
	}
}

func TestRecord_TooLarge(t *testing.T) {
	xy := make(Int32, 16384)
	_, err := NewRecordCodec().Encode(NewRecord(XY, xy))
	if !errors.Is(err, ErrRecordTooLarge) {
		t.Fatalf("Expected ErrRecordTooLarge, got %v", err)
	}
}

func TestRecord_LiteralTakesRegisteredWidth(t *testing.T) {
	codec := NewRecordCodec()
	literal := &Record{Type: RefLibs, Data: Strings("lib1", "lib2")}

	if got := literal.Size(); got != 92 {
		t.Fatalf("Expected size 92, got %d", got)
	}
	if err := literal.Validate(); err != nil {
		t.Fatalf("Expected a valid record, got %v", err)
	}

	encoded, err := codec.Encode(literal)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want, err := codec.Encode(NewRecord(RefLibs, Strings("lib1", "lib2")))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(encoded, want) {
		t.Errorf("Literal encoding differs from NewRecord encoding:\n%x\n%x", encoded, want)
	}

	decoded, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := decoded.Strings(); !reflect.DeepEqual(got, []string{"lib1", "lib2"}) {
		t.Errorf("Expected [lib1 lib2], got %v", got)
	}
}
