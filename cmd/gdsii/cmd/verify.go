/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ssargent/gdsstream/pkg/store"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <file>...",
	Short: "Check stream files for malformed records and grammar errors",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		stats, _ := cmd.Flags().GetBool("stats")

		results := make([]*store.VerifyResult, 0, len(args))
		for _, path := range args {
			res, err := store.Verify(path)
			if err != nil {
				return fmt.Errorf("failed to verify %s: %w", path, err)
			}
			results = append(results, res)
		}

		if asJSON {
			if err := writeVerifyJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
		} else {
			writeVerifyText(cmd.OutOrStdout(), results, stats)
		}

		failed := 0
		for _, res := range results {
			if !res.Valid() {
				failed++
				logger.Warn("verification failed", "path", res.Path, "error", res.Failure)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed verification", failed, len(results))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().Bool("json", false, "Print results as JSON")
	verifyCmd.Flags().Bool("stats", false, "Print record counts by type")
}

type verifyOutput struct {
	*store.VerifyResult
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func writeVerifyJSON(w io.Writer, results []*store.VerifyResult) error {
	out := make([]verifyOutput, 0, len(results))
	for _, res := range results {
		o := verifyOutput{VerifyResult: res, Valid: res.Valid()}
		if res.Failure != nil {
			o.Error = res.Failure.Error()
		}
		out = append(out, o)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeVerifyText(w io.Writer, results []*store.VerifyResult, stats bool) {
	for _, res := range results {
		if res.Valid() {
			fmt.Fprintf(w, "✅ %s: %d records, %d structures, %d elements (%d bytes)\n",
				res.Path, res.Records, res.Structures, res.Elements, res.Size)
		} else {
			fmt.Fprintf(w, "❌ %s: %v\n", res.Path, res.Failure)
		}
		if !stats {
			continue
		}
		types := make([]string, 0, len(res.ByType))
		for name := range res.ByType {
			types = append(types, name)
		}
		sort.Strings(types)
		for _, name := range types {
			fmt.Fprintf(w, "   %-10s %d\n", name, res.ByType[name])
		}
	}
}
