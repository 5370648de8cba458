package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wellnash/wellnash/internal/audit"
	"github.com/wellnash/wellnash/internal/authbackend"
	"github.com/wellnash/wellnash/internal/config"
	"github.com/wellnash/wellnash/internal/domain"
	"github.com/wellnash/wellnash/internal/pubsub"
)

// Dependencies holds the core services shared by the server and the CLI.
// It is built once at startup from the configuration.
type Dependencies struct {
	Config config.Provider
	Auth   domain.Authenticator
	Bus    *pubsub.WatermillBridge
	Audit  *audit.Logger

	cancel context.CancelFunc
}

// NewDependencies creates the auth backend and event bus for cfg and starts
// the audit subscriber. Close releases them.
func NewDependencies(ctx context.Context, cfg config.Provider, logger *slog.Logger) (*Dependencies, error) {
	auth, err := authbackend.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth backend: %w", err)
	}

	bus := pubsub.NewWatermillBridge()
	auditLogger := audit.NewLogger(logger)

	ctx, cancel := context.WithCancel(ctx)
	if err := auditLogger.Start(ctx, bus); err != nil {
		cancel()
		_ = bus.Close()
		return nil, fmt.Errorf("failed to start audit subscriber: %w", err)
	}

	slog.Info("Dependencies ready", "auth_provider", cfg.GetAuthProvider())
	return &Dependencies{
		Config: cfg,
		Auth:   auth,
		Bus:    bus,
		Audit:  auditLogger,
		cancel: cancel,
	}, nil
}

// Close stops the audit subscriber and the event bus.
func (d *Dependencies) Close() error {
	d.cancel()
	return d.Bus.Close()
}
