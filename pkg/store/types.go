package store

import (
	"github.com/pkg/errors"

	"github.com/ssargent/gdsstream/pkg/codec"
)

// IndexEntry locates a structure within a stream file
type IndexEntry struct {
	Name   string // STRNAME of the structure
	Offset int64  // Byte offset of its BGNSTR record
	Size   int64  // Bytes from BGNSTR through ENDSTR inclusive
}

// WriterConfig holds configuration for the stream writer
type WriterConfig struct {
	FilePath   string       // Path of the file to create
	BufferSize int          // Write buffer size (0 = codec default)
	Compress   bool         // Gzip the stream; implied by a .gz suffix
	Tracer     codec.Tracer // Optional record tracer
}

// ReaderConfig holds configuration for the stream reader
type ReaderConfig struct {
	FilePath    string       // Path to the stream file
	StartOffset int64        // Offset to start reading from
	Tracer      codec.Tracer // Optional record tracer
}

// RecordIterator provides streaming access to records
type RecordIterator interface {
	Next() bool
	Record() *codec.Record
	Err() error
	Close() error
}

// Errors
var (
	ErrStructureNotFound = errors.New("structure not found in index")
	ErrCorruption        = errors.New("stream corruption detected")
	ErrClosed            = errors.New("stream is closed")
)
