package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/librum-dev/librum/pkg/core"
)

var watchPattern string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the data directory for external changes",
	Long: `Reports entity files changed by other processes. Only the
file backend supports watching.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		watchable, ok := app.Storage.(core.Watchable)
		if !ok {
			fatal("Watch not supported", fmt.Errorf("backend %s has no file watcher", app.Config.Backend))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events, err := watchable.Watch(ctx, watchPattern)
		if err != nil {
			fatal("Failed to start watcher", err)
		}
		fmt.Printf("Watching %s (pattern %q), Ctrl+C to stop\n", app.Config.DataDir, watchPattern)
		for event := range events {
			fmt.Printf("%s  %-6s %s\n",
				time.Unix(event.Timestamp, 0).Format(time.RFC3339), event.Type, event.File)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "*.json", "Glob pattern for files to watch")
}
