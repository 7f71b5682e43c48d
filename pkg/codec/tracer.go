package codec

// Op names the operation an Event reports.
type Op string

const (
	OpRead  Op = "read"
	OpSkip  Op = "skip"
	OpWrite Op = "write"
)

// Event describes one record operation. Record is nil for skipped records and
// failures.
type Event struct {
	Op     Op
	Offset int64
	Type   RecordType
	Record *Record
	Err    error
}

// Tracer receives record events from readers and writers. Implementations
// are called synchronously on the reading or writing goroutine.
type Tracer interface {
	Trace(Event)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(Event)

// Trace calls f(e).
func (f TracerFunc) Trace(e Event) {
	f(e)
}

// Tracers fans events out to several tracers.
type Tracers []Tracer

// Trace forwards e to every tracer in order.
func (ts Tracers) Trace(e Event) {
	for _, t := range ts {
		t.Trace(e)
	}
}
