/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/gdsstream/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file and an empty catalog",
	Long: `Create a gdsii config file with a generated API key and an empty
structure catalog.

Examples:
	  gdsii init
	  gdsii init --config=./gdsii.yaml --catalog-dir=./catalog`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		force, _ := cmd.Flags().GetBool("force")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		cfg, created, err := initializeConfig(configPath, appConfig.Catalog.Dir, force)
		if err != nil {
			return err
		}
		if !created {
			cmd.Printf("Config already exists at %s. Use --force to regenerate it.\n", configPath)
			return nil
		}

		cmd.Printf("✅ gdsii initialized\n")
		cmd.Printf("Config file: %s\n", configPath)
		cmd.Printf("Catalog directory: %s\n", cfg.Catalog.Dir)
		cmd.Printf("API key: %s\n", cfg.Server.APIKey)
		cmd.Printf("\nYou can now start the server with:\n")
		cmd.Printf("  gdsii serve --config=%s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

// initializeConfig writes a fresh config to configPath and creates the
// catalog directory. It reports false without touching anything when the
// config exists and force is not set.
func initializeConfig(configPath, catalogDir string, force bool) (*config.Config, bool, error) {
	if config.ConfigExists(configPath) && !force {
		return nil, false, nil
	}

	cfg, err := config.BootstrapConfig(configPath, catalogDir)
	if err != nil {
		return nil, false, err
	}
	if err := os.MkdirAll(cfg.Catalog.Dir, 0750); err != nil {
		return nil, false, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	return cfg, true, nil
}
