// Package codec provides record-level reading and writing of GDSII stream files.
//
// A GDSII stream is a flat sequence of typed, length-prefixed records. This
// package knows the record type registry, the payload encodings and the record
// framing. It knows nothing about how records nest into libraries, structures
// and elements; see package grammar for that.
//
// # Record Format
//
// Every record has the following structure:
//
//	[Length(2)][Type(1)][Kind(1)][Payload]
//
// Fields:
//   - Length: 16-bit unsigned total record length in bytes, header included (big-endian)
//   - Type: record type id, 0-69
//   - Kind: data kind id of the payload, 0-6
//   - Payload: Length-4 bytes encoded according to Kind
//
// All multi-byte integers are big-endian regardless of the host byte order.
//
// # Data Kinds
//
//   - NO_DATA: empty payload
//   - BITARRAY: 16-bit flag words
//   - INT2, INT4: signed 16 and 32-bit integers
//   - REAL4: never used by the format; always fails with ErrUnsupported
//   - REAL8: 8-byte excess-64 base-16 floats, see EncodeReal8
//   - ASCII: NUL-padded to an even length, or to the fixed width the registry
//     gives for REFLIBS and FONTS
//
// # Usage
//
// Reading records one at a time:
//
//	r := codec.NewReader(f)
//	for {
//	    rec, err := r.Read(nil)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(rec)
//	}
//
// Selective scans pass a Filter; records of other types are skipped without
// decoding their payload and Read returns (nil, nil) for them.
//
// Writing:
//
//	w := codec.NewWriter(f)
//	if err := w.Write(codec.NewRecord(codec.Header, codec.Int16{5})); err != nil {
//	    return err
//	}
//	return w.Flush()
//
// # End of Stream
//
// Some writers pad files with NUL bytes up to a tape block boundary. A header
// of NUL bytes, or a trailing run shorter than a header made only of NUL
// bytes, is reported as io.EOF just like the physical end of the stream.
//
// # Error Handling
//
// Decode failures are returned as *RecordError carrying the stream offset,
// declared length, type and kind of the failing record. It unwraps to one of
// the package sentinels (ErrTruncated, ErrNegativeLength, ErrUnknownRecordType,
// ErrUnknownDataKind, ErrInvalidLength, ErrUnsupported) so callers can use
// errors.Is. A Reader does not consume a record it failed to decode.
//
// # Tracing
//
// Readers and writers report every record they handle to an optional Tracer
// installed with WithTracer. The package itself never logs.
//
// # Thread Safety
//
// RecordCodec is stateless and safe for concurrent use. A Reader must be used
// by one goroutine at a time. Writer serializes calls to Write.
package codec
