package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/librum-dev/librum"
)

var (
	verbose    bool
	configPath string
	dataDir    string
	backend    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "librum",
	Short: "A transactional library catalog on plain JSON files or SQLite",
	Long: `Librum manages books, members, loans, and reservations.
Multi-entity operations commit atomically; a crash mid-commit is
repaired on the next startup.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// openApp loads configuration and opens the storage backend. Flags
// override the config file.
func openApp() *librum.App {
	cfg, err := librum.LoadConfig(configPath)
	if err != nil {
		fatal("Failed to load config", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if backend != "" {
		cfg.Backend = librum.Backend(backend)
	}
	app, err := librum.New(cfg, librum.WithLogger(slog.Default()))
	if err != nil {
		fatal("Failed to open storage", err)
	}
	return app
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "librum.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Storage backend: file or sqlite (overrides config)")
}
