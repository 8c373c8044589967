// Package cmd implements the command-line interface for the scraper:
// the long-running serve process, a one-shot manual run, and a status
// query against a running instance's admin API.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contentradar/scraper/cmd/run"
	"github.com/contentradar/scraper/cmd/serve"
	"github.com/contentradar/scraper/cmd/status"
)

var (
	// envFile is the optional .env path passed via --env-file.
	envFile string

	rootCmd = &cobra.Command{
		Use:   "scraper",
		Short: "Topic-scoped content scraper",
		Long:  "Aggregates topic-scoped web content (news, jobs, blogs) on a schedule and through an admin API.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command with a fresh context.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default: ./.env if present)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("scraper version 1.0.0")
		},
	})

	rootCmd.AddCommand(serve.Command(&envFile))
	rootCmd.AddCommand(run.Command(&envFile))
	rootCmd.AddCommand(status.Command())
}

// Main is the entry point main.go calls.
func Main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
