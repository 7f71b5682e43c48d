package codec

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errors
var (
	ErrUnknownRecordType = errors.New("unknown record type")
	ErrUnknownDataKind   = errors.New("unknown data kind")
	ErrInvalidLength     = errors.New("invalid payload length")
	ErrNegativeLength    = errors.New("record data length is negative")
	ErrTruncated         = errors.New("truncated record")
	ErrUnsupported       = errors.New("GDT_REAL4 is unsupported")
	ErrArgument          = errors.New("invalid argument")
	ErrRecordTooLarge    = errors.New("record exceeds maximum length")
	ErrReal8Range        = errors.New("value out of REAL8 range")
	ErrKindMismatch      = errors.New("data kind does not match record type")
	ErrNothingToUnread   = errors.New("no record to unread")
)

// RecordError carries the stream position and header fields of a record that
// failed to decode or encode.
type RecordError struct {
	Offset int64
	Length int
	Type   RecordType
	Kind   DataKind
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record at offset %d (length %d, type %s, data kind %s): %v",
		e.Offset, e.Length, e.Type, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// Cause returns the underlying error for github.com/pkg/errors.
func (e *RecordError) Cause() error {
	return e.Err
}
