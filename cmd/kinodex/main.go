package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kinodex/internal/api"
	"kinodex/internal/catalog"
	"kinodex/internal/config"
	"kinodex/internal/ingest"
	"kinodex/internal/scheduler"
	"kinodex/internal/services/shortener"
	"kinodex/internal/services/tmdb"
	"kinodex/internal/session"
	"kinodex/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting kinodex")

	// 3. Open catalog store
	store, err := catalog.NewStore(cfg.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to open catalog store: %w", err)
	}
	defer store.Close()
	logger.WithField("path", cfg.CatalogFile).Info("Catalog store opened")

	// 4. Initialize external services (both optional, both best-effort)
	var shortenerClient *shortener.Client
	if cfg.ShortenerURL != "" {
		shortenerClient, err = shortener.NewClient(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize shortener client: %w", err)
		}
		logger.Info("Shortener client initialized")
	} else {
		logger.Info("No shortener configured, links will be stored as given")
	}

	var tmdbClient *tmdb.Client
	if cfg.TMDBAPIKey != "" {
		tmdbClient, err = tmdb.NewClient(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize TMDB client: %w", err)
		}
		logger.Info("TMDB client initialized")
	} else {
		logger.Info("No TMDB key configured, metadata enrichment disabled")
	}

	// 5. Initialize the catalog engine
	var linkShortener catalog.Shortener
	if shortenerClient != nil {
		linkShortener = shortenerClient
	}
	svc := catalog.NewService(store, linkShortener, logger)

	var ingestShortener ingest.Shortener
	if shortenerClient != nil {
		ingestShortener = shortenerClient
	}
	pipeline := ingest.NewPipeline(store, ingestShortener, logger)
	sessions := session.NewManager()
	logger.Info("Catalog engine initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(store, svc, tmdbClient, cfg.BackfillHours, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, svc, pipeline, sessions, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("kinodex is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("kinodex stopped")
	return nil
}
