package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 30 * time.Second

// RunUntilInterrupt starts the app in the background and blocks until a
// SIGINT/SIGTERM arrives or the server itself fails, then shuts everything
// down in order.
func RunUntilInterrupt(ctx context.Context, a *App) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.Logger.Error("bootstrap: server exited with error", "error", err.Error())
			return fmt.Errorf("bootstrap: serve: %w", err)
		}
	case sig := <-sigCh:
		a.Logger.Info("bootstrap: shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.Shutdown(shutdownCtx)
	return nil
}
