package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"kinodex/internal/catalog"
	"kinodex/internal/config"
	"kinodex/internal/ingest"
)

// IngestHandler handles bulk ingest requests
type IngestHandler struct {
	cfg      *config.Config
	pipeline *ingest.Pipeline
	svc      *catalog.Service
	logger   *logrus.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(cfg *config.Config, pipeline *ingest.Pipeline, svc *catalog.Service, logger *logrus.Logger) *IngestHandler {
	return &IngestHandler{
		cfg:      cfg,
		pipeline: pipeline,
		svc:      svc,
		logger:   logger,
	}
}

// ServeHTTP handles the bulk ingest endpoint. The request body is the
// line-oriented bulk text; the response is the pass summary. The caller's
// admin identity is trusted as given.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	adminID, err := strconv.ParseInt(r.Header.Get("X-Admin-ID"), 10, 64)
	if err != nil || !h.cfg.IsAdmin(adminID) {
		http.Error(w, "Not authorized to ingest", http.StatusForbidden)
		return
	}

	summary, err := h.pipeline.Run(r.Context(), r.Body)
	if errors.Is(err, ingest.ErrIngestRunning) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Bulk ingest failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// The pipeline writes to the store directly, behind the service cache.
	h.svc.Invalidate()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
