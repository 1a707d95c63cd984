package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"kinodex/internal/catalog"
	"kinodex/internal/metrics"
	"kinodex/internal/models"
)

// ErrIngestRunning is returned when a second bulk ingest is requested
// while one is in progress. Requests are rejected, never queued.
var ErrIngestRunning = errors.New("a bulk ingest is already running, try again later")

// Store is the slice of the catalog store the pipeline needs
type Store interface {
	Get(key string) (*models.Entry, error)
	SetQuality(key, quality, link string) error
	FindExistingKeyCaseInsensitive(title string) (string, error)
}

// Shortener shortens links best-effort; failures return the input unchanged
type Shortener interface {
	Shorten(ctx context.Context, rawURL string) string
}

// Pipeline runs bulk catalog ingestion. At most one pass runs per process;
// the guard is the system's only explicit mutual exclusion.
type Pipeline struct {
	store     Store
	shortener Shortener
	guard     *semaphore.Weighted
	logger    *logrus.Logger
}

// NewPipeline creates a bulk ingest pipeline. shortener may be nil, in
// which case links are persisted as given.
func NewPipeline(store Store, shortener Shortener, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		store:     store,
		shortener: shortener,
		guard:     semaphore.NewWeighted(1),
		logger:    logger,
	}
}

// Run processes the input line by line, in input order, and returns the
// pass tally. A failed line never aborts the pass; the guard is released
// unconditionally on return.
func (p *Pipeline) Run(ctx context.Context, input io.Reader) (*models.Summary, error) {
	if !p.guard.TryAcquire(1) {
		metrics.IngestRejected.Inc()
		return nil, ErrIngestRunning
	}
	defer p.guard.Release(1)

	summary := &models.Summary{}
	// Titles minted during this pass, so two lines for the same new title
	// resolve to one key instead of racing to create two.
	seen := make(map[string]string)

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		summary.Total++
		p.processLine(ctx, line, seen, summary)
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("failed to read ingest input: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"total":     summary.Total,
		"success":   summary.Success,
		"duplicate": summary.Duplicate,
		"invalid":   summary.Invalid,
		"failed":    summary.Failed,
	}).Info("Bulk ingest completed")

	return summary, nil
}

func (p *Pipeline) processLine(ctx context.Context, line string, seen map[string]string, summary *models.Summary) {
	parsed, ok := ParseLine(line)
	if !ok {
		summary.Invalid++
		metrics.IngestLines.WithLabelValues("invalid").Inc()
		p.logger.WithField("line", line).Debug("Skipping malformed ingest line")
		return
	}

	key, err := p.resolveKey(parsed.Title, seen)
	if err != nil {
		summary.Failed++
		metrics.IngestLines.WithLabelValues("failed").Inc()
		p.logger.WithError(err).WithField("title", parsed.Title).Error("Failed to resolve catalog key")
		return
	}

	entry, err := p.store.Get(key)
	if err != nil {
		summary.Failed++
		metrics.IngestLines.WithLabelValues("failed").Inc()
		p.logger.WithError(err).WithField("key", key).Error("Failed to read entry")
		return
	}
	if entry.HasQuality(parsed.Quality) {
		summary.Duplicate++
		metrics.IngestLines.WithLabelValues("duplicate").Inc()
		p.logger.WithFields(logrus.Fields{
			"key":     key,
			"quality": parsed.Quality,
		}).Debug("Quality already present, skipping")
		return
	}

	link := parsed.Link
	if p.shortener != nil {
		link = p.shortener.Shorten(ctx, link)
	}

	if err := p.store.SetQuality(key, parsed.Quality, link); err != nil {
		summary.Failed++
		metrics.IngestLines.WithLabelValues("failed").Inc()
		p.logger.WithError(err).WithFields(logrus.Fields{
			"key":     key,
			"quality": parsed.Quality,
		}).Error("Failed to persist ingest line")
		return
	}

	summary.Success++
	metrics.IngestLines.WithLabelValues("success").Inc()
}

// resolveKey finds the key a title belongs to: first the in-pass cache,
// then a live case-insensitive catalog scan, and only then a fresh key.
func (p *Pipeline) resolveKey(title string, seen map[string]string) (string, error) {
	lookup := catalog.DisplayName(catalog.Normalize(title))
	if key, ok := seen[lookup]; ok {
		return key, nil
	}

	key, err := p.store.FindExistingKeyCaseInsensitive(title)
	if err != nil {
		return "", err
	}
	if key == "" {
		key = catalog.Normalize(title)
	}
	seen[lookup] = key
	return key, nil
}
