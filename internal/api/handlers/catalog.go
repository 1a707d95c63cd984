package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"kinodex/internal/catalog"
	"kinodex/internal/session"
)

// CatalogHandler serves paginated catalog listings
type CatalogHandler struct {
	svc      *catalog.Service
	sessions *session.Manager
	logger   *logrus.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc *catalog.Service, sessions *session.Manager, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		svc:      svc,
		sessions: sessions,
		logger:   logger,
	}
}

// CatalogResponse is one page of catalog keys
type CatalogResponse struct {
	Keys    []string `json:"keys"`
	Offset  int      `json:"offset"`
	Total   int      `json:"total"`
	HasPrev bool     `json:"has_prev"`
	HasNext bool     `json:"has_next"`
}

// ServeHTTP handles the catalog listing endpoint. When a user identity is
// supplied, the offset defaults to that user's cursor and the page they
// land on becomes their new cursor.
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var userID int64
	hasUser := false
	if raw := r.URL.Query().Get("user"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}
		userID = parsed
		hasUser = true
	}

	offset := 0
	if hasUser {
		offset = h.sessions.Offset(userID)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid offset", http.StatusBadRequest)
			return
		}
		offset = parsed
	}
	if offset < 0 {
		offset = 0
	}

	keys, err := h.svc.Keys()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list catalog keys")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	page, hasPrev, hasNext := session.Page(keys, offset, session.CatalogPageSize)
	if hasUser {
		h.sessions.SetOffset(userID, offset)
	}

	response := CatalogResponse{
		Keys:    page,
		Offset:  offset,
		Total:   len(keys),
		HasPrev: hasPrev,
		HasNext: hasNext,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
