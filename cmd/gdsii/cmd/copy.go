/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
	"github.com/ssargent/gdsstream/pkg/schema"
	"github.com/ssargent/gdsstream/pkg/store"
)

// Copy modes
const (
	copyModeRecord  = "record"
	copyModeGrammar = "grammar"
	copyModeStream  = "stream"
)

// copyCmd represents the copy command
var copyCmd = &cobra.Command{
	Use:   "copy <src> <dst>",
	Short: "Copy a stream file",
	Long: `Copy a GDSII stream file, decoding and re-encoding it on the way.

Modes:
  record   copy record by record without checking the library grammar
  grammar  parse the whole library into memory, then write it out
  stream   parse and write one structure at a time`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		compress, _ := cmd.Flags().GetBool("compress")

		n, err := copyFile(args[0], args[1], mode, compress)
		if err != nil {
			return err
		}
		cmd.Printf("Copied %s to %s (%d bytes)\n", args[0], args[1], n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)

	copyCmd.Flags().StringP("mode", "m", copyModeStream, "Copy mode: record, grammar or stream")
	copyCmd.Flags().BoolP("compress", "z", false, "Gzip the output")
}

// copyFile copies src to dst in the given mode and returns the number of
// uncompressed bytes written
func copyFile(src, dst, mode string, compress bool) (int64, error) {
	var copyFn func(*store.StreamReader, *store.StreamWriter) error
	switch mode {
	case copyModeRecord:
		copyFn = copyRecords
	case copyModeGrammar:
		copyFn = copyLibrary
	case copyModeStream:
		copyFn = copyStructures
	default:
		return 0, fmt.Errorf("unknown copy mode %q", mode)
	}

	r, err := openStream(src)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	w, err := createStream(dst, compress)
	if err != nil {
		return 0, err
	}
	if err := copyFn(r, w); err != nil {
		w.Close()
		return 0, fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	logger.Info("copied stream", "src", src, "dst", dst, "mode", mode, "bytes", w.Size())
	return w.Size(), nil
}

func copyRecords(r *store.StreamReader, w *store.StreamWriter) error {
	return r.Records().ReadEach(nil, w.Write)
}

func copyLibrary(r *store.StreamReader, w *store.StreamWriter) error {
	lib, err := grammar.Parse(r.Records(), schema.Library)
	if err != nil {
		return err
	}
	return w.WriteGroup(lib)
}

func copyStructures(r *store.StreamReader, w *store.StreamWriter) error {
	return streamStructures(r.Records(), w.Records(), func(*grammar.Group) bool { return true })
}

// streamStructures copies the library header, the structures keep accepts
// and the footer from r to w, holding one structure in memory at a time
func streamStructures(r *codec.Reader, w *codec.Writer, keep func(*grammar.Group) bool) error {
	lib, err := grammar.ParseHeader(r, schema.Library)
	if err != nil {
		return err
	}
	if err := grammar.SerializeAs(w, schema.Library.Head(), lib); err != nil {
		return err
	}

	err = grammar.ReadEach(r, schema.Structure, func(str *grammar.Group) error {
		if !keep(str) {
			return nil
		}
		return grammar.Serialize(w, str)
	})
	if err != nil {
		return err
	}

	footer, err := grammar.ParseFooter(r, schema.Library)
	if err != nil {
		return err
	}
	return grammar.SerializeFooter(w, footer)
}
