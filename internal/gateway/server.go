// Package gateway implements the HTTP front end.
//
// The front end is stateless: every request recomputes its view of the world
// from its own query parameters plus the persisted grant. The only state
// machine is conceptual; nothing here carries session state between requests.
package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/docgate/docgate/internal/logger"
	"github.com/docgate/docgate/pkg/config"
	"github.com/docgate/docgate/pkg/grant"
	"github.com/docgate/docgate/pkg/metrics"
	"github.com/docgate/docgate/pkg/tree"
	"github.com/docgate/docgate/pkg/view"
)

// Gateway composes the tree resolver, content streamer, and authorization
// manager into the three HTTP operations.
type Gateway struct {
	cfg      config.ServerConfig
	resolver *tree.Resolver
	streamer *view.Streamer
	grants   *grant.Manager
}

// New creates a gateway over the given components.
//
// Panics if any component is nil (indicates programmer error).
func New(cfg config.ServerConfig, resolver *tree.Resolver, streamer *view.Streamer, grants *grant.Manager) *Gateway {
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if streamer == nil {
		panic("streamer cannot be nil")
	}
	if grants == nil {
		panic("grant manager cannot be nil")
	}

	return &Gateway{
		cfg:      cfg,
		resolver: resolver,
		streamer: streamer,
		grants:   grants,
	}
}

// Handler returns the gateway's HTTP handler with metrics instrumentation.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", g.handleBrowse)
	mux.HandleFunc("GET /open", g.handleOpen)
	mux.HandleFunc("GET /view", g.handleView)
	return metrics.Middleware(mux)
}

// Serve runs the HTTP listener until the context is cancelled, then shuts
// down gracefully within the configured shutdown timeout.
func (g *Gateway) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         g.cfg.Listen,
		Handler:      g.Handler(),
		ReadTimeout:  g.cfg.ReadTimeout,
		WriteTimeout: g.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", logger.String("addr", g.cfg.Listen))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("gateway server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down gateway",
		logger.String("timeout", g.cfg.ShutdownTimeout.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), g.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
