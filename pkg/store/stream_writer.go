package store

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
)

// StreamWriter writes records and parsed groups to a new stream file
type StreamWriter struct {
	file   *os.File
	gz     *gzip.Writer
	writer *codec.Writer
	config WriterConfig
	mutex  sync.Mutex
	closed bool
}

// CreateWriter creates (or truncates) the file named in config
func CreateWriter(config WriterConfig) (*StreamWriter, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	w := &StreamWriter{file: file, config: config}
	var dst io.Writer = file
	if config.Compress || strings.HasSuffix(config.FilePath, ".gz") {
		w.gz = gzip.NewWriter(file)
		dst = w.gz
	}

	var opts []codec.Option
	if config.BufferSize > 0 {
		opts = append(opts, codec.WithBufferSize(config.BufferSize))
	}
	if config.Tracer != nil {
		opts = append(opts, codec.WithTracer(config.Tracer))
	}
	w.writer = codec.NewWriter(dst, opts...)
	return w, nil
}

// Write appends a single record
func (w *StreamWriter) Write(rec *codec.Record) error {
	if w.isClosed() {
		return ErrClosed
	}
	return w.writer.Write(rec)
}

// WriteGroup serializes a parsed group. Nothing is written if the group is
// missing a required item.
func (w *StreamWriter) WriteGroup(g *grammar.Group) error {
	if w.isClosed() {
		return ErrClosed
	}
	return grammar.Serialize(w.writer, g)
}

// WriteAs serializes the part of g selected by spec, e.g. Library.Head().
func (w *StreamWriter) WriteAs(spec *grammar.Grammar, g *grammar.Group) error {
	if w.isClosed() {
		return ErrClosed
	}
	return grammar.SerializeAs(w.writer, spec, g)
}

// Records returns the underlying record writer
func (w *StreamWriter) Records() *codec.Writer {
	return w.writer
}

// Sync flushes buffered records and fsyncs the file. Compressed streams are
// flushed to a sync point first.
func (w *StreamWriter) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return ErrClosed
	}
	return w.sync()
}

// sync performs the actual fsync operation (internal method)
func (w *StreamWriter) sync() error {
	if err := w.writer.Flush(); err != nil {
		return err
	}
	if w.gz != nil {
		if err := w.gz.Flush(); err != nil {
			return err
		}
	}
	return w.file.Sync()
}

// Close flushes everything, terminates the gzip stream and closes the file
func (w *StreamWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.writer.Flush()
	if w.gz != nil {
		if gzErr := w.gz.Close(); err == nil {
			err = gzErr
		}
	}
	if err == nil {
		err = w.file.Sync()
	}
	if closeErr := w.file.Close(); err == nil {
		err = closeErr
	}
	return errors.Wrapf(err, "failed to close %s", w.config.FilePath)
}

// Size returns the number of uncompressed bytes written so far
func (w *StreamWriter) Size() int64 {
	return w.writer.Offset()
}

// Path returns the file path
func (w *StreamWriter) Path() string {
	return w.config.FilePath
}

// Compressed reports whether the stream is gzipped
func (w *StreamWriter) Compressed() bool {
	return w.gz != nil
}

func (w *StreamWriter) isClosed() bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.closed
}
