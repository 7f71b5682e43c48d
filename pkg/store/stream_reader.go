package store

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/ssargent/gdsstream/pkg/codec"
)

var gzipMagic = []byte{0x1f, 0x8b}

// StreamReader provides sequential access to the records of a stream file.
// Gzipped files are detected by their magic number and decompressed
// transparently; offsets always refer to the decompressed stream.
type StreamReader struct {
	file       *os.File
	gz         *gzip.Reader
	reader     *codec.Reader
	config     ReaderConfig
	compressed bool
}

// OpenReader opens the stream file named in config
func OpenReader(config ReaderConfig) (*StreamReader, error) {
	r := &StreamReader{config: config}
	if err := r.open(config.StartOffset); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *StreamReader) open(offset int64) error {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return err
	}

	compressed, err := isGzip(file)
	if err != nil {
		file.Close()
		return errors.Wrapf(err, "failed to probe %s", r.config.FilePath)
	}

	var src io.Reader = file
	var gz *gzip.Reader
	if compressed {
		gz, err = gzip.NewReader(bufio.NewReader(file))
		if err != nil {
			file.Close()
			return errors.Wrapf(err, "failed to open gzip stream %s", r.config.FilePath)
		}
		if _, err := io.CopyN(io.Discard, gz, offset); err != nil {
			gz.Close()
			file.Close()
			return errors.Wrapf(err, "failed to skip to offset %d", offset)
		}
		src = gz
	} else if offset > 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			file.Close()
			return err
		}
	}

	opts := []codec.Option{codec.WithStartOffset(offset)}
	if r.config.Tracer != nil {
		opts = append(opts, codec.WithTracer(r.config.Tracer))
	}
	r.file, r.gz, r.compressed = file, gz, compressed
	r.reader = codec.NewReader(src, opts...)
	return nil
}

// isGzip reports whether file starts with the gzip magic number and rewinds it.
func isGzip(file *os.File) (bool, error) {
	magic := make([]byte, len(gzipMagic))
	n, err := io.ReadFull(file, magic)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return false, err
	}
	return n == len(gzipMagic) && bytes.Equal(magic, gzipMagic), nil
}

// ReadNext reads the next record; io.EOF at the end of the stream
func (r *StreamReader) ReadNext() (*codec.Record, error) {
	if r.reader == nil {
		return nil, ErrClosed
	}
	return r.reader.Read(nil)
}

// ReadAt reads the record at a specific offset without moving the cursor
func (r *StreamReader) ReadAt(offset int64) (*codec.Record, error) {
	at, err := OpenReader(ReaderConfig{FilePath: r.config.FilePath, StartOffset: offset})
	if err != nil {
		return nil, err
	}
	defer at.Close()

	rec, err := at.ReadNext()
	if err == io.EOF {
		return nil, errors.Wrapf(ErrCorruption, "no record at offset %d", offset)
	}
	return rec, err
}

// Seek sets the read offset. Compressed streams are reopened and skipped
// forward.
func (r *StreamReader) Seek(offset int64) error {
	if r.reader == nil {
		return ErrClosed
	}
	if !r.compressed {
		return r.reader.Seek(offset)
	}
	if err := r.close(); err != nil {
		return err
	}
	return r.open(offset)
}

// Offset returns the current read offset
func (r *StreamReader) Offset() int64 {
	if r.reader == nil {
		return 0
	}
	return r.reader.Offset()
}

// Compressed reports whether the file is gzipped
func (r *StreamReader) Compressed() bool {
	return r.compressed
}

// Records returns the underlying record reader, for grammar parsing
func (r *StreamReader) Records() *codec.Reader {
	return r.reader
}

// Iterator returns a streaming iterator for records
func (r *StreamReader) Iterator() RecordIterator {
	return &streamRecordIterator{reader: r}
}

// Close closes the stream reader
func (r *StreamReader) Close() error {
	if r.reader == nil {
		return nil
	}
	return r.close()
}

func (r *StreamReader) close() error {
	var gzErr error
	if r.gz != nil {
		gzErr = r.gz.Close()
	}
	err := r.file.Close()
	r.file, r.gz, r.reader = nil, nil, nil
	if gzErr != nil {
		return gzErr
	}
	return err
}

// streamRecordIterator implements RecordIterator for streaming access
type streamRecordIterator struct {
	reader *StreamReader
	record *codec.Record
	err    error
}

func (it *streamRecordIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.record, it.err = it.reader.ReadNext()
	return it.err == nil
}

func (it *streamRecordIterator) Record() *codec.Record {
	return it.record
}

// Err returns the error that stopped iteration; nil at a clean end of stream.
func (it *streamRecordIterator) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

func (it *streamRecordIterator) Close() error {
	// The reader is owned by the caller
	return nil
}
