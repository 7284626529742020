package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/docgate/docgate/internal/gateway"
	"github.com/docgate/docgate/internal/logger"
	"github.com/docgate/docgate/pkg/config"
	"github.com/docgate/docgate/pkg/grant"
	"github.com/docgate/docgate/pkg/metrics"
	"github.com/docgate/docgate/pkg/provider"
	"github.com/docgate/docgate/pkg/tree"
	"github.com/docgate/docgate/pkg/view"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/docgate/config.yaml)")
	logLevel := flag.String("log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if *logLevel != "" {
		logger.SetLevel(*logLevel)
	}

	fmt.Println("docgate - Document-Tree Gateway")

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docProvider, defaultTree, err := config.CreateProvider(ctx, &cfg.Provider)
	if err != nil {
		log.Fatalf("Failed to create provider: %v", err)
	}

	grantStore, err := config.CreateGrantStore(ctx, &cfg.Grants)
	if err != nil {
		log.Fatalf("Failed to create grant store: %v", err)
	}
	defer func() {
		if err := grantStore.Close(); err != nil {
			logger.Error("failed to close grant store", logger.Err(err))
		}
	}()

	// Headless deployments have no interactive picker; the consent surface
	// answers every prompt with the provider's default tree, read-only.
	consent := provider.NewStaticConsent(defaultTree, provider.PermRead|provider.PermPersistable)

	manager := grant.NewManager(grantStore, docProvider, consent)
	go manager.Run(ctx)

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.ListenAndServe(ctx, cfg.Metrics.Listen); err != nil {
				logger.Error("metrics server error", logger.Err(err))
			}
		}()
	}

	gw := gateway.New(cfg.Server,
		tree.NewResolver(docProvider),
		view.NewStreamer(docProvider, cfg.Viewer.InlineMimeTypes),
		manager)

	// Start server in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- gw.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("gateway is running", logger.String("listen", cfg.Server.Listen))

	select {
	case <-sigChan:
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("server shutdown error", logger.Err(err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")

	case err := <-serverDone:
		if err != nil {
			logger.Error("server error", logger.Err(err))
			os.Exit(1)
		}
	}
}
