package store

import (
	"github.com/pkg/errors"

	"github.com/ssargent/gdsstream/pkg/grammar"
	"github.com/ssargent/gdsstream/pkg/schema"
)

// ReadFile opens path, calls fn and closes the file however fn returns.
func ReadFile(path string, fn func(*StreamReader) error) (err error) {
	r, err := OpenReader(ReaderConfig{FilePath: path})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := r.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(r)
}

// WriteFile creates path, calls fn and closes the file however fn returns.
// The file is left behind, possibly partial, when fn fails.
func WriteFile(path string, compress bool, fn func(*StreamWriter) error) (err error) {
	w, err := CreateWriter(WriterConfig{FilePath: path, Compress: compress})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(w)
}

// ReadLibrary parses a whole library file into memory.
func ReadLibrary(path string) (*grammar.Group, error) {
	var lib *grammar.Group
	err := ReadFile(path, func(r *StreamReader) error {
		var err error
		lib, err = grammar.Parse(r.Records(), schema.Library)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read library %s", path)
	}
	return lib, nil
}

// WriteLibrary serializes a library to path.
func WriteLibrary(path string, lib *grammar.Group, compress bool) error {
	return WriteFile(path, compress, func(w *StreamWriter) error {
		return w.WriteGroup(lib)
	})
}
