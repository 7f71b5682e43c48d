package codec

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// readBufferSize must hold the largest possible record so a whole record can
// be peeked before any byte is consumed.
const readBufferSize = MaxRecordSize + 1

// Reader reads records sequentially from a byte stream.
//
// A Reader never consumes the bytes of a record it failed to decode, so after
// an error Offset still points at the start of the offending record.
type Reader struct {
	src    io.Reader
	br     *bufio.Reader
	offset int64
	tracer Tracer

	last    *Record // most recent record returned by Read
	lastLen int     // wire length of last; may exceed last.Size() for over-padded strings
	pending bool    // last was pushed back by Unread
}

// NewReader creates a Reader on src.
func NewReader(src io.Reader, opts ...Option) *Reader {
	o := newOptions(opts)
	return &Reader{
		src:    src,
		br:     bufio.NewReaderSize(src, max(o.bufferSize, readBufferSize)),
		offset: o.startOffset,
		tracer: o.tracer,
	}
}

// Read returns the next record.
//
// It returns io.EOF at the end of the stream and when the remaining bytes are
// NUL padding. When filter is non-nil and does not allow the record type, the
// payload is skipped undecoded and Read returns (nil, nil).
func (r *Reader) Read(filter Filter) (*Record, error) {
	if r.pending {
		rec := r.last
		r.pending = false
		r.offset += int64(r.lastLen)
		if !filter.Allows(rec.Type) {
			r.last = nil
			r.trace(Event{Op: OpSkip, Offset: r.offset - int64(r.lastLen), Type: rec.Type})
			return nil, nil
		}
		return rec, nil
	}
	r.last = nil

	start := r.offset
	hdr, err := r.br.Peek(HeaderSize)
	if err != nil {
		if err != io.EOF {
			return nil, r.fail(&RecordError{Offset: start, Err: err})
		}
		if isPadding(hdr) {
			return nil, io.EOF
		}
		return nil, r.fail(&RecordError{Offset: start, Err: errors.Wrapf(ErrTruncated, "%d header bytes", len(hdr))})
	}
	if isPadding(hdr) {
		return nil, io.EOF
	}

	length := int(binary.BigEndian.Uint16(hdr[0:2]))
	t, kind := RecordType(hdr[2]), DataKind(hdr[3])
	if length < HeaderSize {
		if t == Header {
			return nil, io.EOF
		}
		return nil, r.fail(&RecordError{Offset: start, Length: length, Type: t, Kind: kind,
			Err: errors.Wrapf(ErrNegativeLength, "%d", length-HeaderSize)})
	}

	if !filter.Allows(t) {
		n, err := r.br.Discard(length)
		r.offset += int64(n)
		if err != nil {
			return nil, r.fail(&RecordError{Offset: start, Length: length, Type: t, Kind: kind, Err: ErrTruncated})
		}
		r.trace(Event{Op: OpSkip, Offset: start, Type: t})
		return nil, nil
	}

	buf, err := r.br.Peek(length)
	if err != nil {
		if err == io.EOF {
			err = errors.Wrapf(ErrTruncated, "%d of %d bytes", len(buf), length)
		}
		return nil, r.fail(&RecordError{Offset: start, Length: length, Type: t, Kind: kind, Err: err})
	}
	rec, err := decodeRecord(t, kind, buf[HeaderSize:])
	if err != nil {
		return nil, r.fail(&RecordError{Offset: start, Length: length, Type: t, Kind: kind, Err: err})
	}
	if _, err := r.br.Discard(length); err != nil {
		return nil, r.fail(&RecordError{Offset: start, Length: length, Type: t, Kind: kind, Err: err})
	}
	r.offset += int64(length)
	r.last, r.lastLen = rec, length
	r.trace(Event{Op: OpRead, Offset: start, Type: t, Record: rec})
	return rec, nil
}

// LastOffset returns the stream offset of the record most recently returned
// by Read. It accounts for the wire length, so over-padded strings report
// where they actually started. The value is meaningful until the next Read
// or Unread.
func (r *Reader) LastOffset() int64 {
	return r.offset - int64(r.lastLen)
}

// Unread pushes the record returned by the last Read back onto the stream.
// Only one record can be pushed back.
func (r *Reader) Unread() error {
	if r.last == nil || r.pending {
		return ErrNothingToUnread
	}
	r.pending = true
	r.offset -= int64(r.lastLen)
	return nil
}

// Peek returns the next record without consuming it. Offset is unchanged
// whether or not the record decodes.
func (r *Reader) Peek() (*Record, error) {
	rec, err := r.Read(nil)
	if err != nil {
		return nil, err
	}
	if err := r.Unread(); err != nil {
		return nil, err
	}
	return rec, nil
}

// ReadEach calls fn for every record allowed by filter until the end of the
// stream. It stops at the first error returned by fn.
func (r *Reader) ReadEach(filter Filter, fn func(*Record) error) error {
	for {
		rec, err := r.Read(filter)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if rec == nil {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// Offset returns the stream position of the next record.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Seek moves to an absolute record offset. The source must be an io.Seeker.
func (r *Reader) Seek(offset int64) error {
	s, ok := r.src.(io.Seeker)
	if !ok {
		return errors.New("source does not support seeking")
	}
	if _, err := s.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrapf(err, "failed to seek to offset %d", offset)
	}
	r.br.Reset(r.src)
	r.offset = offset
	r.last = nil
	r.pending = false
	return nil
}

func (r *Reader) fail(err *RecordError) error {
	r.trace(Event{Op: OpRead, Offset: err.Offset, Type: err.Type, Err: err})
	return err
}

func (r *Reader) trace(e Event) {
	if r.tracer != nil {
		r.tracer.Trace(e)
	}
}

// isPadding reports whether b is a (possibly short) run of NUL bytes.
func isPadding(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
