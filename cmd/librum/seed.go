package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate an empty catalog with demo data",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		if err := app.Seed(context.Background()); err != nil {
			fatal("Failed to seed", err)
		}
		fmt.Println("Demo data seeded.")
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
