package main

import (
	"context"
	"os"

	"github.com/wellnash/wellnash/cmd/wellnash/cmd"
	"github.com/wellnash/wellnash/internal/server"
)

// main runs the server without the CLI, for process managers and containers
// that expect a single-purpose binary.
func main() {
	ctx, stop := server.ShutdownContext(context.Background())
	defer stop()

	if err := cmd.Serve(ctx, ""); err != nil {
		stop()
		os.Exit(1)
	}
}
