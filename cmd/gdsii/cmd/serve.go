/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/gdsstream/pkg/api"
	"github.com/ssargent/gdsstream/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the catalog REST API server",
	Long: `Serve the structure catalog over HTTP. Every /api/v1 route requires the
X-API-Key header; /metrics and /swagger are open.

An api_key of "auto" in the config generates a key for this run and prints it.

Examples:
  gdsii serve --port=8080 --catalog-dir=./catalog
  gdsii serve --api-key=mysecretkey --bind=0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := serverConfig(cmd)
		if err != nil {
			return err
		}

		cat, err := openCatalog()
		if err != nil {
			return err
		}
		defer cat.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cmd.Printf("🚀 Starting gdsii catalog server on %s:%d\n", cfg.Bind, cfg.Port)
		cmd.Printf("📁 Catalog directory: %s\n", appConfig.Catalog.Dir)
		logger.Info("starting server", "bind", cfg.Bind, "port", cfg.Port, "catalog", appConfig.Catalog.Dir)

		starter := container.GetServerFactory().CreateServerStarter()
		if err := starter.StartServer(ctx, cat, cfg); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().String("api-key", "", "API key required by /api/v1 routes")
	serveCmd.Flags().Int64("max-import-bytes", 256<<20, "Largest accepted import body")
}

// serverConfig merges the config file with explicitly set flags
func serverConfig(cmd *cobra.Command) (api.ServerConfig, error) {
	cfg := api.ServerConfig{
		Port:   appConfig.Server.Port,
		Bind:   appConfig.Server.Bind,
		APIKey: appConfig.Server.APIKey,
	}
	cfg.MaxImportBytes, _ = cmd.Flags().GetInt64("max-import-bytes")
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		cfg.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey, _ = cmd.Flags().GetString("api-key")
	}

	if cfg.APIKey == "auto" {
		key, err := config.GenerateSecureKey(32)
		if err != nil {
			return api.ServerConfig{}, err
		}
		cfg.APIKey = key
		cmd.Printf("Generated API key: %s\n", key)
	}
	if cfg.APIKey == "" {
		return api.ServerConfig{}, fmt.Errorf("an API key is required (set server.api_key or --api-key)")
	}
	return cfg, nil
}
