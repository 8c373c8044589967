// Package run implements the "run" subcommand: a one-shot manual scrape
// pass over every adapter (or a single named one), without starting the
// HTTP server or the cron scheduler.
package run

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contentradar/scraper/internal/bootstrap"
	"github.com/contentradar/scraper/internal/domain"
)

// Command builds the "run" subcommand.
func Command(envFile *string) *cobra.Command {
	var adapterName string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one scraping pass and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), *envFile, adapterName)
		},
	}
	cmd.Flags().StringVar(&adapterName, "adapter", "", "run only this adapter (default: all adapters)")
	return cmd
}

func run(ctx context.Context, envFile, adapterName string) error {
	deps, err := bootstrap.NewCommandDeps(envFile)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	app, err := bootstrap.BuildServices(ctx, deps)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer func() {
		shutdownCtx := context.Background()
		app.Shutdown(shutdownCtx)
	}()

	if adapterName != "" {
		if startErr := app.Scraper.StartSpecific(ctx, adapterName, domain.TriggerManual, "cli"); startErr != nil {
			return fmt.Errorf("run: %w", startErr)
		}
		return nil
	}

	if startErr := app.Scraper.StartAll(ctx, domain.TriggerManual, "cli"); startErr != nil {
		return fmt.Errorf("run: %w", startErr)
	}
	return nil
}
