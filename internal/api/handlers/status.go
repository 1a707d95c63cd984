package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"kinodex/internal/catalog"
)

// StatusHandler handles status requests
type StatusHandler struct {
	svc    *catalog.Service
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(svc *catalog.Service, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		svc:    svc,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalEntries    int `json:"total_entries"`
	Movies          int `json:"movies"`
	Series          int `json:"series"`
	TotalQualities  int `json:"total_qualities"`
	MissingMetadata int `json:"missing_metadata"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot, err := h.svc.Snapshot()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load catalog snapshot")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{TotalEntries: len(snapshot)}
	for _, entry := range snapshot {
		if entry.Meta.IsSeries {
			response.Series++
		} else {
			response.Movies++
		}
		if entry.Meta.Poster == "" {
			response.MissingMetadata++
		}
		response.TotalQualities += len(entry.Qualities)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
