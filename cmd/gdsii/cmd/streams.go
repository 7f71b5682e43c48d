/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/store"
)

// openStream opens a library file for reading with the record tracer attached
func openStream(path string) (*store.StreamReader, error) {
	r, err := store.OpenReader(store.ReaderConfig{
		FilePath: path,
		Tracer:   recordTracer(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return r, nil
}

// createStream creates a library file using the configured writer settings
func createStream(path string, compress bool) (*store.StreamWriter, error) {
	w, err := store.CreateWriter(store.WriterConfig{
		FilePath:   path,
		BufferSize: appConfig.Writer.BufferSize,
		Compress:   compress || appConfig.Writer.Compress,
		Tracer:     recordTracer(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return w, nil
}

// parseFilter turns a comma separated list of record type names into a
// filter. An empty list allows every type.
func parseFilter(list string) (codec.Filter, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	var types []codec.RecordType
	for _, name := range strings.Split(list, ",") {
		name = strings.ToUpper(strings.TrimSpace(name))
		t, ok := codec.LookupRecordType(name)
		if !ok {
			return nil, fmt.Errorf("unknown record type %q", name)
		}
		types = append(types, t)
	}
	return codec.NewFilter(types...), nil
}
