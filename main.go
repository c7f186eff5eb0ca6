package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/driftbyte/loiter-cli/cmd"
	"github.com/driftbyte/loiter-cli/internal/observability"
)

func main() {
	// Listen for interrupt signals (SIGINT, SIGTERM) for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()

	// An interrupt that unwound cleanly is a successful run.
	if err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}
