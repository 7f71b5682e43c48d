package codec

import (
	"bufio"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// Writer writes records sequentially to a byte stream.
type Writer struct {
	mu     sync.Mutex
	bw     *bufio.Writer
	offset int64
	tracer Tracer
	buf    []byte
}

// NewWriter creates a Writer on dst. Call Flush when done.
func NewWriter(dst io.Writer, opts ...Option) *Writer {
	o := newOptions(opts)
	return &Writer{
		bw:     bufio.NewWriterSize(dst, o.bufferSize),
		offset: o.startOffset,
		tracer: o.tracer,
	}
}

// Write encodes rec and appends it to the stream. Nothing is written when the
// record fails to encode.
func (w *Writer) Write(rec *Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := w.offset
	buf, err := rec.AppendBinary(w.buf[:0])
	if err != nil {
		err = &RecordError{Offset: start, Length: rec.Size(), Type: rec.Type, Kind: rec.Kind(), Err: err}
		w.trace(Event{Op: OpWrite, Offset: start, Type: rec.Type, Err: err})
		return err
	}
	w.buf = buf

	n, err := w.bw.Write(buf)
	w.offset += int64(n)
	if err != nil {
		return errors.Wrapf(err, "failed to write %s record at offset %d", rec.Type, start)
	}
	w.trace(Event{Op: OpWrite, Offset: start, Type: rec.Type, Record: rec})
	return nil
}

// Offset returns the stream position of the next record.
func (w *Writer) Offset() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.offset
}

// Flush writes any buffered data to the underlying stream.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bw.Flush()
}

func (w *Writer) trace(e Event) {
	if w.tracer != nil {
		w.tracer.Trace(e)
	}
}
