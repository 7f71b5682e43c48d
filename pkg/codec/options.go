package codec

// Option configures a Reader or a Writer.
type Option func(*options)

type options struct {
	tracer      Tracer
	startOffset int64
	bufferSize  int
}

const defaultWriteBufferSize = 64 * 1024

func newOptions(opts []Option) options {
	o := options{bufferSize: defaultWriteBufferSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTracer reports every record read, skipped or written to t.
func WithTracer(t Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithStartOffset sets the offset reported for the first record, for streams
// that do not start at the beginning of a file.
func WithStartOffset(offset int64) Option {
	return func(o *options) {
		o.startOffset = offset
	}
}

// WithBufferSize sets the I/O buffer size. Readers never use less than one
// maximum record.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}
