package catalog

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"kinodex/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(newTestStore(t), nil, logger)
}

func TestServiceAddResolvesCaseVariants(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	outcome, key, err := svc.Add(ctx, "Inception", "720p", "http://example.com/i720")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if outcome != models.OutcomeAdded || key != "Inception" {
		t.Fatalf("first add: outcome %q key %q", outcome, key)
	}

	// Trailing space and different case must resolve to the same key.
	outcome, key, err = svc.Add(ctx, "inception ", "1080p", "http://example.com/i1080")
	if err != nil {
		t.Fatalf("Add variant failed: %v", err)
	}
	if outcome != models.OutcomeUpdated || key != "Inception" {
		t.Fatalf("variant add: outcome %q key %q, want updated/Inception", outcome, key)
	}

	snapshot, err := svc.store.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(snapshot) != 1 {
		t.Fatalf("catalog fragmented into %d entries", len(snapshot))
	}
	if len(snapshot["Inception"].Qualities) != 2 {
		t.Errorf("expected both qualities on one entry: %+v", snapshot["Inception"].Qualities)
	}
}

func TestServiceAddDuplicateQuality(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.Add(ctx, "Heat", "720p", "http://example.com/h1")
	outcome, _, err := svc.Add(ctx, "heat", "720p", "http://example.com/h2")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if outcome != models.OutcomeDuplicate {
		t.Fatalf("expected duplicate outcome, got %q", outcome)
	}

	// Original link untouched.
	entry, _ := svc.store.Get("Heat")
	if entry.Qualities["720p"] != "http://example.com/h1" {
		t.Error("duplicate add overwrote existing link")
	}
}

func TestServiceRemove(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.Add(ctx, "Heat", "720p", "http://example.com/h")

	outcome, err := svc.Remove("HEAT")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if outcome != models.OutcomeRemoved {
		t.Fatalf("expected removed outcome, got %q", outcome)
	}

	outcome, err = svc.Remove("Heat")
	if err != nil {
		t.Fatalf("Remove of missing title must not error: %v", err)
	}
	if outcome != models.OutcomeNotFound {
		t.Fatalf("expected not_found outcome, got %q", outcome)
	}
}

func TestServiceRenameConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.Add(ctx, "First", "720p", "http://example.com/1")
	svc.Add(ctx, "Second", "720p", "http://example.com/2")

	outcome, _, err := svc.Rename("First", "second")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if outcome != models.OutcomeConflict {
		t.Fatalf("expected conflict outcome, got %q", outcome)
	}
}

func TestServiceRename(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.Add(ctx, "Old Name", "720p", "http://example.com/o")

	outcome, newKey, err := svc.Rename("old name", "New Name")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if outcome != models.OutcomeUpdated || newKey != "New Name" {
		t.Fatalf("rename outcome %q key %q", outcome, newKey)
	}

	entry, _ := svc.Get("new name")
	if entry == nil || entry.Qualities["720p"] != "http://example.com/o" {
		t.Errorf("renamed entry not resolvable: %+v", entry)
	}
}

func TestServiceSearchSeesWrites(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	results, err := svc.Search("matrix")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty catalog, got %v", results)
	}

	// Add must invalidate the snapshot cache.
	svc.Add(ctx, "The Matrix", "720p", "http://example.com/m")
	results, err = svc.Search("matrix")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0] != "The Matrix" {
		t.Errorf("Search after Add = %v", results)
	}
}
