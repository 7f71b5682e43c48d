package store

import (
	"io"

	"github.com/pkg/errors"

	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
	"github.com/ssargent/gdsstream/pkg/schema"
)

// VerifyResult holds the outcome of a Verify pass
type VerifyResult struct {
	Path       string         `json:"path"`
	Compressed bool           `json:"compressed"`
	Size       int64          `json:"size"`
	Records    int            `json:"records"`
	ByType     map[string]int `json:"by_type"`
	Structures int            `json:"structures"`
	Elements   int            `json:"elements"`
	// Failure is the first problem found; nil for a well formed library.
	Failure error `json:"-"`
}

// Valid reports whether the file passed every check
func (v *VerifyResult) Valid() bool {
	return v.Failure == nil
}

// Verify checks every record of a library file against the record registry
// and then parses the file with the library grammar. Problems with the
// contents are reported in the result; the error is for I/O failures.
func Verify(path string) (*VerifyResult, error) {
	res := &VerifyResult{Path: path, ByType: make(map[string]int)}

	err := ReadFile(path, func(r *StreamReader) error {
		res.Compressed = r.Compressed()
		for {
			start := r.Offset()
			rec, err := r.ReadNext()
			if err == io.EOF {
				break
			}
			if err != nil {
				res.Failure = err
				return nil
			}
			if err := rec.Validate(); err != nil {
				res.Failure = &codec.RecordError{Offset: start, Length: rec.Size(), Type: rec.Type, Kind: rec.Kind(), Err: err}
				return nil
			}
			res.Records++
			res.ByType[rec.Name()]++
		}
		res.Size = r.Offset()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Failure != nil {
		return res, nil
	}

	err = ReadFile(path, func(r *StreamReader) error {
		lib, err := grammar.ParseHeader(r.Records(), schema.Library)
		if err != nil {
			res.Failure = err
			return nil
		}
		if schema.Name(lib) == "" {
			res.Failure = errors.Wrap(schema.ErrMalformedRecord, "library has no name")
			return nil
		}
		err = grammar.ReadEach(r.Records(), schema.Structure, func(str *grammar.Group) error {
			res.Structures++
			res.Elements += len(schema.Elements(str))
			return nil
		})
		if err == nil {
			_, err = grammar.ParseFooter(r.Records(), schema.Library)
		}
		if err != nil {
			res.Failure = err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
