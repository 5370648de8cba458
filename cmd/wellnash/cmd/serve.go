package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/wellnash/wellnash/internal/app"
	"github.com/wellnash/wellnash/internal/config"
	"github.com/wellnash/wellnash/internal/logging"
	"github.com/wellnash/wellnash/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server until interrupted.

Examples:
  wellnash serve                 # listen on APP_ADDR (default :8080)
  wellnash serve --addr :9000    # override the listen address`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := server.ShutdownContext(cmd.Context())
		defer stop()
		return Serve(ctx, serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides APP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

// Serve loads the configuration and runs the server until ctx is canceled.
// An empty addr uses the configured one.
func Serve(ctx context.Context, addr string) error {
	cfg := config.New()
	logger := logging.New(cfg.GetLogFormat(), cfg.GetLogLevel())

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	s, err := server.New(server.Dependencies{
		Config:    cfg,
		Auth:      deps.Auth,
		Publisher: deps.Bus,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	s.RegisterRoutes()

	if addr == "" {
		addr = cfg.GetAppAddr()
	}
	if err := s.Start(ctx, addr); err != nil {
		slog.Error("Server stopped with error", "error", err)
		return err
	}
	return nil
}
