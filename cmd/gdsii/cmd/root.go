/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/config"
	"github.com/ssargent/gdsstream/pkg/di"
)

var (
	container *di.Container
	appConfig = config.DefaultConfig()
	logger    = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// SetContainer sets the dependency injection container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gdsii",
	Short: "gdsii - GDSII stream toolkit",
	Long: `gdsii reads, writes, checks and catalogs GDSII stream files.

Files may be plain or gzip compressed; compression is detected on read and
selected on write by a .gz suffix or the --compress flag.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("catalog-dir") {
			cfg.Catalog.Dir, _ = cmd.Flags().GetString("catalog-dir")
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-format") {
			cfg.Logging.Format, _ = cmd.Flags().GetString("log-format")
		}
		if trace, _ := cmd.Flags().GetBool("trace"); trace {
			cfg.Logging.Level = "debug"
		}

		l, err := newLogger(cmd.ErrOrStderr(), cfg.Logging)
		if err != nil {
			return err
		}
		appConfig = cfg
		logger = l
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().String("catalog-dir", "./catalog", "Directory of the structure catalog")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text or json)")
	rootCmd.PersistentFlags().Bool("trace", false, "Log every record read or written")
}

// loadConfig reads the config file when one exists. An explicitly named
// file must exist; the default location is optional.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.GetDefaultConfigPath()
		if !config.ConfigExists(path) {
			return config.DefaultConfig(), nil
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the slog logger described by the logging config
func newLogger(w io.Writer, cfg config.Logging) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", cfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
}

// recordTracer logs record events at debug level and failures at warn
func recordTracer(l *slog.Logger) codec.Tracer {
	return codec.TracerFunc(func(e codec.Event) {
		if e.Err != nil {
			l.Warn("record failed", "op", e.Op, "offset", e.Offset, "type", e.Type.String(), "error", e.Err)
			return
		}
		l.Debug("record", "op", e.Op, "offset", e.Offset, "type", e.Type.String())
	})
}
