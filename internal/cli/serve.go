package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/pkg/config"
	"github.com/codeatlas/codeatlas/pkg/web"
)

// shutdownTimeout bounds graceful shutdown after an interrupt.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

The serve command starts an HTTP server exposing the analysis, layout, and
clustering stages under /api/v1. Cache backend, embedding provider, and port
come from ` + config.DefaultConfigFile + `, CODEATLAS_* environment variables,
or flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd, configPath, port)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultConfigFile, "config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")

	return cmd
}

// runServe wires the runner from configuration and serves until ctx is done.
func (c *CLI) runServe(ctx context.Context, cmd *cobra.Command, configPath string, port int) error {
	cfg, err := config.LoadFile(configPath, nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}

	runner, err := c.newRunnerFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	handler := web.NewServer(runner, c.Logger)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
