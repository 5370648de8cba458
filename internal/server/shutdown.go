package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ShutdownContext returns a context that is canceled on an interrupt or
// terminate signal.
func ShutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
