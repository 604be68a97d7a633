package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/Prithvi-997/origin-brew/internal/config"
	"github.com/Prithvi-997/origin-brew/internal/web"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Origin Brew HTTP API.

The server generates albums synchronously or as background jobs with
progress streamed over SSE, applies page edits and serves the layout
catalog. WEB_HOST and WEB_PORT override the flags.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Bool("no-ai", false, "Serve without a planner, using the deterministic engine only")
}

// resolveServeHostPort resolves port and host from flags and the environment.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")
	if cfg.Web.Port > 0 {
		port = cfg.Web.Port
	}
	if cfg.Web.Host != "" {
		host = cfg.Web.Host
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	cfg := config.Load()

	g, err := newGenerator(cmd.Context(), cfg, mustGetBool(cmd, "no-ai"), logger)
	if err != nil {
		return err
	}

	port, host := resolveServeHostPort(cmd, cfg)
	server := web.NewServer(cfg, g, port, host, logger)

	// Interrupt already cancels the command context.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	printTitle(fmt.Sprintf("Origin Brew API on http://%s:%d", host, port))
	fmt.Println(styleDim.Render("Press Ctrl+C to stop"))

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
