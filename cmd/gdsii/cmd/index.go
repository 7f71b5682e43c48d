/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/gdsstream/pkg/store"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "List the structures of a stream file with their offsets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, _ := cmd.Flags().GetString("prefix")

		idx, err := store.IndexFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", args[0], err)
		}
		return writeIndex(cmd.OutOrStdout(), idx, prefix)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().StringP("prefix", "p", "", "Only list structures whose name starts with prefix")
}

// writeIndex prints one line per structure: offset, size and name. Without a
// prefix the structures are listed in stream order, otherwise by name.
func writeIndex(w io.Writer, idx *store.StructureIndex, prefix string) error {
	var entries []*store.IndexEntry
	if prefix == "" {
		entries = idx.Entries()
	} else {
		for _, name := range idx.NamesWithPrefix(prefix) {
			entry, _ := idx.Get(name)
			entries = append(entries, entry)
		}
	}

	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%10d %8d  %s\n", e.Offset, e.Size, e.Name); err != nil {
			return err
		}
	}
	return nil
}
