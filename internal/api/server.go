package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"kinodex/internal/api/handlers"
	"kinodex/internal/api/middleware"
	"kinodex/internal/catalog"
	"kinodex/internal/config"
	"kinodex/internal/ingest"
	"kinodex/internal/session"
)

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	svc      *catalog.Service
	pipeline *ingest.Pipeline
	sessions *session.Manager
	logger   *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, svc *catalog.Service, pipeline *ingest.Pipeline, sessions *session.Manager, logger *logrus.Logger) *Server {
	s := &Server{
		svc:      svc,
		pipeline: pipeline,
		sessions: sessions,
		logger:   logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux, cfg)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // bulk ingest can take a while
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux, cfg *config.Config) {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(s.svc, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	// Catalog search and browsing
	searchHandler := handlers.NewSearchHandler(s.svc, s.logger)
	mux.HandleFunc("/api/search", searchHandler.ServeHTTP)

	catalogHandler := handlers.NewCatalogHandler(s.svc, s.sessions, s.logger)
	mux.HandleFunc("/api/catalog", catalogHandler.ServeHTTP)

	// Bulk ingest (admin only)
	ingestHandler := handlers.NewIngestHandler(cfg, s.pipeline, s.svc, s.logger)
	mux.HandleFunc("/api/ingest", ingestHandler.ServeHTTP)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
