/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/gdsstream/pkg/grammar"
	"github.com/ssargent/gdsstream/pkg/schema"
	"github.com/ssargent/gdsstream/pkg/store"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <src> <dst> [name]...",
	Short: "Copy selected structures into a new library",
	Long: `Write a library holding only the named structures of src. The library
header and footer are copied from src. Structures are located through an
index of src, so only the selected ones are parsed.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, _ := cmd.Flags().GetString("prefix")
		compress, _ := cmd.Flags().GetBool("compress")

		names, err := extractStructures(args[0], args[1], args[2:], prefix, compress)
		if err != nil {
			return err
		}
		cmd.Printf("Extracted %d structures to %s\n", len(names), args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("prefix", "p", "", "Also extract every structure whose name starts with prefix")
	extractCmd.Flags().BoolP("compress", "z", false, "Gzip the output")
}

// extractStructures writes the selected structures of src to dst and
// returns their names in output order
func extractStructures(src, dst string, names []string, prefix string, compress bool) ([]string, error) {
	r, err := openStream(src)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	idx, err := store.BuildIndex(r)
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", src, err)
	}

	selected := selectNames(idx, names, prefix)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no structures selected")
	}
	for _, name := range selected {
		if _, ok := idx.Get(name); !ok {
			return nil, fmt.Errorf("%w: %q in %s", store.ErrStructureNotFound, name, src)
		}
	}

	if err := r.Seek(0); err != nil {
		return nil, err
	}
	lib, err := grammar.ParseHeader(r.Records(), schema.Library)
	if err != nil {
		return nil, err
	}
	footerAt := r.Offset()
	for _, e := range idx.Entries() {
		if end := e.Offset + e.Size; end > footerAt {
			footerAt = end
		}
	}

	err = store.WriteFile(dst, compress || appConfig.Writer.Compress, func(w *store.StreamWriter) error {
		if err := w.WriteAs(schema.Library.Head(), lib); err != nil {
			return err
		}
		for _, name := range selected {
			str, err := idx.ReadStructure(r, name)
			if err != nil {
				return err
			}
			if err := w.WriteGroup(str); err != nil {
				return err
			}
		}

		if err := r.Seek(footerAt); err != nil {
			return err
		}
		footer, err := grammar.ParseFooter(r.Records(), schema.Library)
		if err != nil {
			return err
		}
		return grammar.SerializeFooter(w.Records(), footer)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract from %s: %w", src, err)
	}
	logger.Info("extracted structures", "src", src, "dst", dst, "structures", len(selected))
	return selected, nil
}

// selectNames merges explicit names with the prefix matches, dropping
// duplicates
func selectNames(idx *store.StructureIndex, names []string, prefix string) []string {
	all := append([]string(nil), names...)
	if prefix != "" {
		all = append(all, idx.NamesWithPrefix(prefix)...)
	}
	seen := make(map[string]bool, len(all))
	var selected []string
	for _, name := range all {
		if seen[name] {
			continue
		}
		seen[name] = true
		selected = append(selected, name)
	}
	return selected
}
