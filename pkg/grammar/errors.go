package grammar

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/ssargent/gdsstream/pkg/codec"
)

// Errors
var (
	ErrGrammarViolation     = errors.New("grammar violation")
	ErrMissingRequiredField = errors.New("missing required field")
)

// ViolationError reports a record that appeared where the grammar did not
// allow it.
type ViolationError struct {
	Offset   int64
	Grammar  string
	Expected string
	// Found is the offending record, or nil at the end of the stream.
	Found *codec.Record
}

func newViolation(in, expected Key, offset int64, found *codec.Record) *ViolationError {
	return &ViolationError{Offset: offset, Grammar: in.String(), Expected: expected.String(), Found: found}
}

func (e *ViolationError) Error() string {
	if e.Found == nil {
		return fmt.Sprintf("%v: unexpected end of stream at offset %d in %s; expected %s",
			ErrGrammarViolation, e.Offset, e.Grammar, e.Expected)
	}
	return fmt.Sprintf("%v: unexpected record at offset %d in %s; expected %s, found %s (data kind %s, length %d)",
		ErrGrammarViolation, e.Offset, e.Grammar, e.Expected, e.Found.Type, e.Found.Kind(), e.Found.Size())
}

// Unwrap returns ErrGrammarViolation.
func (e *ViolationError) Unwrap() error { return ErrGrammarViolation }

// MissingFieldError reports a required item with no data at serialization time.
type MissingFieldError struct {
	Grammar string
	Item    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%v: %s requires %s", ErrMissingRequiredField, e.Grammar, e.Item)
}

// Unwrap returns ErrMissingRequiredField.
func (e *MissingFieldError) Unwrap() error { return ErrMissingRequiredField }
