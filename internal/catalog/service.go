package catalog

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"kinodex/internal/metrics"
	"kinodex/internal/models"
)

const (
	snapshotCacheKey = "snapshot"
	snapshotTTL      = 30 * time.Second
)

// Shortener shortens download links. Implementations never fail: on any
// internal error they return the input unchanged.
type Shortener interface {
	Shorten(ctx context.Context, rawURL string) string
}

// Service fronts the Store with a short-lived snapshot cache and carries
// the single-title operations the dispatch layer calls into
type Service struct {
	store     *Store
	shortener Shortener
	cache     *gocache.Cache
	logger    *logrus.Logger
}

// NewService creates a catalog service. shortener may be nil, in which
// case links are stored as given.
func NewService(store *Store, shortener Shortener, logger *logrus.Logger) *Service {
	return &Service{
		store:     store,
		shortener: shortener,
		cache:     gocache.New(snapshotTTL, 2*snapshotTTL),
		logger:    logger,
	}
}

// Snapshot returns the current catalog, served from cache for up to 30s
// so listing and search don't hammer GetAll.
func (s *Service) Snapshot() (map[string]*models.Entry, error) {
	if cached, ok := s.cache.Get(snapshotCacheKey); ok {
		return cached.(map[string]*models.Entry), nil
	}

	snapshot, err := s.store.GetAll()
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(snapshotCacheKey, snapshot)
	return snapshot, nil
}

// Invalidate drops the cached snapshot after out-of-band writes
func (s *Service) Invalidate() {
	s.cache.Delete(snapshotCacheKey)
}

// Keys returns all catalog keys in listing order
func (s *Service) Keys() ([]string, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return SortedKeys(snapshot), nil
}

// Search runs the two-tier title search over the current snapshot
func (s *Service) Search(query string) ([]string, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	results := Search(query, snapshot)

	// Fuzzy results are only returned when the substring pass was empty,
	// so containment of the query discriminates the tiers exactly.
	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	switch {
	case len(results) == 0:
		metrics.SearchQueries.WithLabelValues("none").Inc()
	case strings.Contains(DisplayName(results[0]), q):
		metrics.SearchQueries.WithLabelValues("substring").Inc()
	default:
		metrics.SearchQueries.WithLabelValues("fuzzy").Inc()
	}

	return results, nil
}

// Get resolves a title to its entry, case-insensitively. A missing title
// is (nil, nil).
func (s *Service) Get(title string) (*models.Entry, error) {
	key, err := s.store.FindExistingKeyCaseInsensitive(title)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, nil
	}
	return s.store.Get(key)
}

// Add upserts one quality/link pair for a title. An existing key that
// matches case-insensitively is reused so the catalog never grows two
// entries differing only in case or whitespace. A quality already present
// is a duplicate outcome, never an overwrite.
func (s *Service) Add(ctx context.Context, title, quality, link string) (models.Outcome, string, error) {
	key, err := s.store.FindExistingKeyCaseInsensitive(title)
	if err != nil {
		return "", "", err
	}

	created := key == ""
	if created {
		key = Normalize(title)
	}

	entry, err := s.store.Get(key)
	if err != nil {
		return "", "", err
	}
	if entry.HasQuality(quality) {
		return models.OutcomeDuplicate, key, nil
	}

	if s.shortener != nil {
		link = s.shortener.Shorten(ctx, link)
	}

	if err := s.store.SetQuality(key, quality, link); err != nil {
		return "", "", err
	}
	s.Invalidate()

	s.logger.WithFields(logrus.Fields{
		"key":     key,
		"quality": quality,
	}).Info("Catalog entry written")

	if created {
		return models.OutcomeAdded, key, nil
	}
	return models.OutcomeUpdated, key, nil
}

// Remove deletes a title's entry. Not-found is an outcome, not an error.
func (s *Service) Remove(title string) (models.Outcome, error) {
	key, err := s.store.FindExistingKeyCaseInsensitive(title)
	if err != nil {
		return "", err
	}
	if key == "" {
		return models.OutcomeNotFound, nil
	}

	if err := s.store.Delete(key); err != nil {
		return "", err
	}
	s.Invalidate()

	s.logger.WithField("key", key).Info("Catalog entry removed")
	return models.OutcomeRemoved, nil
}

// Rename moves an entry to a new title. A target that already exists is
// a conflict outcome; nothing is overwritten.
func (s *Service) Rename(oldTitle, newTitle string) (models.Outcome, string, error) {
	oldKey, err := s.store.FindExistingKeyCaseInsensitive(oldTitle)
	if err != nil {
		return "", "", err
	}
	if oldKey == "" {
		return models.OutcomeNotFound, "", nil
	}

	target, err := s.store.FindExistingKeyCaseInsensitive(newTitle)
	if err != nil {
		return "", "", err
	}
	if target != "" && target != oldKey {
		return models.OutcomeConflict, target, nil
	}

	newKey := Normalize(newTitle)
	if newKey == oldKey {
		return models.OutcomeUpdated, newKey, nil
	}
	if err := s.store.Rename(oldKey, newKey); err != nil {
		return "", "", err
	}
	s.Invalidate()

	s.logger.WithFields(logrus.Fields{
		"old_key": oldKey,
		"new_key": newKey,
	}).Info("Catalog entry renamed")
	return models.OutcomeUpdated, newKey, nil
}

// Wipe removes every entry
func (s *Service) Wipe() error {
	if err := s.store.DeleteAll(); err != nil {
		return err
	}
	s.Invalidate()
	s.logger.Warn("Catalog wiped")
	return nil
}

// MissingMetadata lists keys without a poster yet
func (s *Service) MissingMetadata() ([]string, error) {
	return s.store.MissingMetadata()
}
