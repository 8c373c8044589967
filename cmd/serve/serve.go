// Package serve implements the "serve" subcommand: the long-running
// process that hosts the admin HTTP API and the cron-driven scheduler.
package serve

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contentradar/scraper/internal/bootstrap"
)

// Command builds the "serve" subcommand. envFile is bound to the root
// command's persistent --env-file flag.
func Command(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin API and scheduler until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), *envFile)
		},
	}
}

func run(ctx context.Context, envFile string) error {
	deps, err := bootstrap.NewCommandDeps(envFile)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	app, err := bootstrap.BuildServices(ctx, deps)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	return bootstrap.RunUntilInterrupt(ctx, app)
}
