package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"kinodex/internal/catalog"
	"kinodex/internal/config"
	"kinodex/internal/ingest"
	"kinodex/internal/models"
)

func newTestIngestHandler(t *testing.T) *IngestHandler {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := catalog.NewStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{AdminIDs: []int64{1}}
	svc := catalog.NewService(store, nil, logger)
	pipeline := ingest.NewPipeline(store, nil, logger)
	return NewIngestHandler(cfg, pipeline, svc, logger)
}

func TestIngestRejectsNonAdmin(t *testing.T) {
	handler := newTestIngestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader("The Matrix 720p http://example.com/m"))
	req.Header.Set("X-Admin-ID", "999")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestIngestRejectsMissingIdentity(t *testing.T) {
	handler := newTestIngestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader("x"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestIngestReturnsSummary(t *testing.T) {
	handler := newTestIngestHandler(t)

	body := "The Matrix 720p http://example.com/m\n" +
		"not a parsable line\n" +
		"Inception 1080p http://example.com/i\n"
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(body))
	req.Header.Set("X-Admin-ID", "1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var summary models.Summary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if summary.Total != 3 || summary.Success != 2 || summary.Invalid != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestIngestMethodNotAllowed(t *testing.T) {
	handler := newTestIngestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ingest", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
