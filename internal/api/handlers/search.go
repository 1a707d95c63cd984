package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"kinodex/internal/catalog"
)

// SearchHandler handles catalog search requests
type SearchHandler struct {
	svc    *catalog.Service
	logger *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(svc *catalog.Service, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		svc:    svc,
		logger: logger,
	}
}

// SearchResponse represents the search response. An empty Results with a
// 200 status is "no result", which is distinct from an error.
type SearchResponse struct {
	Query   string   `json:"query"`
	Results []string `json:"results"`
	Count   int      `json:"count"`
}

// ServeHTTP handles the search endpoint
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "Missing search query", http.StatusBadRequest)
		return
	}

	results, err := h.svc.Search(query)
	if err != nil {
		h.logger.WithError(err).Error("Search failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if results == nil {
		results = []string{}
	}
	response := SearchResponse{
		Query:   query,
		Results: results,
		Count:   len(results),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
