package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tulznet/tulz/internal/obs"
	"github.com/tulznet/tulz/internal/server"
)

// NewServeCmd creates the 'serve' command for running the preview API.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the search preview API",
		Long: `Start an HTTP server exposing the search session as JSON.

Routes:
  GET    /api/search?search=&category=&sort=&features=
  GET    /api/tools/{id}
  GET    /api/recent
  POST   /api/recent      {"query": "..."}
  DELETE /api/recent
  GET    /health

The search index is built in the background; until it is ready, queries
return no tools and /health reports index_ready=false.`,
		Example: `  # Listen on the configured address
  tulz serve

  # Override the address
  tulz serve --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	return cmd
}

// runServe starts the API server with signal handling.
// Implements graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
func runServe(cmd *cobra.Command, addr string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if addr == "" {
		addr = a.cfg.Settings.ListenAddr
	}

	a.loadIndexAsync()

	logger := obs.Logger("server")
	h := server.NewHandler(server.Options{
		Catalog:     a.catalog,
		Searcher:    a.index,
		Store:       a.store,
		Tracker:     a.tracker,
		RecentLimit: a.cfg.Settings.RecentLimit,
		SearchLimit: a.cfg.Settings.SearchLimit,
		Logger:      logger,
	})

	if strings.HasPrefix(addr, ":") || strings.HasPrefix(addr, "0.0.0.0") {
		logger.Warn().Str("addr", addr).Msg("binding to all interfaces")
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := server.Run(ctx, server.NewServer(addr, h), logger); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// contextOrBackground guards against commands executed without a context.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
