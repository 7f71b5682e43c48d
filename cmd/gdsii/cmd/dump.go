/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/gdsstream/pkg/codec"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the records of a stream file",
	Long: `Print every record of a GDSII stream file, one per line, prefixed
with its byte offset. Use --types to limit the output to some record types.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		types, _ := cmd.Flags().GetString("types")
		filter, err := parseFilter(types)
		if err != nil {
			return err
		}
		return dumpFile(cmd.OutOrStdout(), args[0], filter)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringP("types", "t", "", "Comma separated record types to print (e.g. BGNSTR,STRNAME)")
}

// dumpFile writes one line per record allowed by filter
func dumpFile(w io.Writer, path string, filter codec.Filter) error {
	r, err := openStream(path)
	if err != nil {
		return err
	}
	defer r.Close()

	records := r.Records()
	return records.ReadEach(filter, func(rec *codec.Record) error {
		_, err := fmt.Fprintf(w, "%8d  %s\n", records.LastOffset(), rec)
		return err
	})
}
