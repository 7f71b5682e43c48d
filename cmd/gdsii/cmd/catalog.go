/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/gdsstream/pkg/api"
	"github.com/ssargent/gdsstream/pkg/catalog"
	"github.com/ssargent/gdsstream/pkg/codec"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Store the structures of stream files in the catalog",
	Long: `Store every structure of the given stream files in the catalog.
A structure replaces any stored structure of the same name, and the
library header of the last file becomes the catalog header.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog()
		if err != nil {
			return err
		}
		defer cat.Close()

		for _, path := range args {
			res, err := importFile(cat, path)
			if err != nil {
				return err
			}
			cmd.Printf("Imported %d structures from %s (library %s, %d replaced)\n",
				res.Structures, path, res.Library, res.Replaced)
		}
		return nil
	},
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <dst> [name]...",
	Short: "Write catalog structures to a stream file",
	Long: `Write a library made of the catalog header and the named structures.
Without names every stored structure is written, in name order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		compress, _ := cmd.Flags().GetBool("compress")

		cat, err := openCatalog()
		if err != nil {
			return err
		}
		defer cat.Close()

		n, err := exportFile(cat, args[0], args[1:], compress)
		if err != nil {
			return err
		}
		cmd.Printf("Exported %d structures to %s\n", n, args[0])
		return nil
	},
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the structures stored in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog()
		if err != nil {
			return err
		}
		defer cat.Close()

		entries, err := cat.List()
		if err != nil {
			return fmt.Errorf("failed to list structures: %w", err)
		}
		for _, e := range entries {
			cmd.Printf("%-27s %8d  %s  %s\n", e.ID, e.Size, e.Created.Format("2006-01-02 15:04:05"), e.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(listCmd)

	exportCmd.Flags().BoolP("compress", "z", false, "Gzip the output")
}

// openCatalog opens the configured catalog through the container
func openCatalog() (api.CatalogCloser, error) {
	if container == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	cat, err := container.GetCatalogOpener().OpenCatalog(appConfig.Catalog.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", appConfig.Catalog.Dir, err)
	}
	return cat, nil
}

// importFile stores the structures of a stream file in cat
func importFile(cat api.ICatalog, path string) (*catalog.ImportResult, error) {
	r, err := openStream(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	res, err := cat.Import(r.Records())
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	logger.Info("imported library", "path", path, "library", res.Library, "structures", res.Structures)
	return res, nil
}

// exportFile writes the named structures, or all of them, to dst and returns
// how many were written
func exportFile(cat api.ICatalog, dst string, names []string, compress bool) (int, error) {
	export := func(w *codec.Writer) error { return cat.ExportStructures(w, names...) }
	if len(names) == 0 {
		entries, err := cat.List()
		if err != nil {
			return 0, fmt.Errorf("failed to list structures: %w", err)
		}
		for _, e := range entries {
			names = append(names, e.Name)
		}
		export = cat.Export
	}

	w, err := createStream(dst, compress)
	if err != nil {
		return 0, err
	}
	if err := export(w.Records()); err != nil {
		w.Close()
		return 0, fmt.Errorf("failed to export to %s: %w", dst, err)
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return len(names), nil
}
