package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"

	"kinodex/internal/models"
)

var (
	// ErrNotFound is returned when an operation targets a missing entry.
	ErrNotFound = errors.New("entry not found")
	// ErrKeyExists is returned when a rename would overwrite an entry.
	ErrKeyExists = errors.New("target key already exists")
)

var seasonKeyPattern = regexp.MustCompile(`^S\d{2}$`)

// Store wraps the bolthold-backed catalog tree
type Store struct {
	store *bolthold.Store
}

// NewStore opens the catalog database at path
func NewStore(path string) (*Store, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog store: %w", err)
	}

	return &Store{store: store}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.store.Close()
}

// GetAll returns a full snapshot of the catalog keyed by entry key.
// Callers should hold the snapshot for the duration of one operation
// rather than calling this in a loop.
func (s *Store) GetAll() (map[string]*models.Entry, error) {
	var entries []*models.Entry
	if err := s.store.Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	snapshot := make(map[string]*models.Entry, len(entries))
	for _, entry := range entries {
		snapshot[entry.Key] = entry
	}
	return snapshot, nil
}

// Get retrieves one entry. A missing entry is (nil, nil), not an error:
// "no catalog yet" is a valid state.
func (s *Store) Get(key string) (*models.Entry, error) {
	var entry models.Entry
	err := s.store.Get(key, &entry)
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry %q: %w", key, err)
	}
	return &entry, nil
}

// SetQuality upserts a single quality/link pair, creating the entry if
// absent. Meta.DateAdded is stamped on the first write only.
func (s *Store) SetQuality(key, quality, link string) error {
	if quality == models.MetaField {
		return fmt.Errorf("%q is a reserved field, not a quality label", quality)
	}

	entry, err := s.Get(key)
	if err != nil {
		return err
	}
	if entry == nil {
		entry = &models.Entry{Key: key, Title: key}
	}
	if entry.Qualities == nil {
		entry.Qualities = make(map[string]string)
	}
	entry.Stamp(time.Now())
	entry.Qualities[quality] = link

	if err := s.store.Upsert(key, entry); err != nil {
		return fmt.Errorf("failed to persist quality %q for %q: %w", quality, key, err)
	}
	return nil
}

// SetMetaField upserts a single metadata field without disturbing the
// entry's qualities
func (s *Store) SetMetaField(key, field string, value interface{}) error {
	entry, err := s.Get(key)
	if err != nil {
		return err
	}
	if entry == nil {
		entry = &models.Entry{Key: key, Title: key}
	}

	switch field {
	case "poster":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("poster must be a string, got %T", value)
		}
		entry.Meta.Poster = v
	case "year":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("year must be a string, got %T", value)
		}
		entry.Meta.Year = v
	case "tmdb_id":
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("tmdb_id must be an int, got %T", value)
		}
		entry.Meta.TMDBID = v
	case "is_series":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("is_series must be a bool, got %T", value)
		}
		entry.Meta.IsSeries = v
	case "date_added":
		v, ok := value.(int64)
		if !ok {
			return fmt.Errorf("date_added must be an int64, got %T", value)
		}
		entry.Meta.DateAdded = v
	default:
		return fmt.Errorf("unknown meta field %q", field)
	}

	if err := s.store.Upsert(key, entry); err != nil {
		return fmt.Errorf("failed to persist meta field %q for %q: %w", field, key, err)
	}
	return nil
}

// SetSeasonPoster sets the poster of a season sub-entry ("S01", "S02", ...)
func (s *Store) SetSeasonPoster(key, season, poster string) error {
	if !seasonKeyPattern.MatchString(season) {
		return fmt.Errorf("invalid season key %q", season)
	}

	entry, err := s.Get(key)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("season poster for %q: %w", key, ErrNotFound)
	}
	if entry.Seasons == nil {
		entry.Seasons = make(map[string]models.Season)
	}
	entry.Seasons[season] = models.Season{Poster: poster}

	if err := s.store.Upsert(key, entry); err != nil {
		return fmt.Errorf("failed to persist season %q for %q: %w", season, key, err)
	}
	return nil
}

// Rename copies an entry to newKey and deletes oldKey. It reports
// ErrKeyExists if newKey already holds data; it never overwrites.
func (s *Store) Rename(oldKey, newKey string) error {
	existing, err := s.Get(newKey)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("rename %q to %q: %w", oldKey, newKey, ErrKeyExists)
	}

	entry, err := s.Get(oldKey)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("rename %q: %w", oldKey, ErrNotFound)
	}

	entry.Key = newKey
	entry.Title = newKey
	if err := s.store.Insert(newKey, entry); err != nil {
		return fmt.Errorf("failed to insert renamed entry %q: %w", newKey, err)
	}
	if err := s.store.Delete(oldKey, &models.Entry{}); err != nil {
		return fmt.Errorf("failed to delete old entry %q: %w", oldKey, err)
	}
	return nil
}

// Delete removes one entry
func (s *Store) Delete(key string) error {
	err := s.store.Delete(key, &models.Entry{})
	if errors.Is(err, bolthold.ErrNotFound) {
		return fmt.Errorf("delete %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete entry %q: %w", key, err)
	}
	return nil
}

// DeleteAll wipes the whole catalog
func (s *Store) DeleteAll() error {
	if err := s.store.DeleteMatching(&models.Entry{}, nil); err != nil {
		return fmt.Errorf("failed to wipe catalog: %w", err)
	}
	return nil
}

// FindExistingKeyCaseInsensitive scans the catalog for a key whose
// normalized lowercase form matches the candidate title. It returns ""
// when no such key exists. New keys must only be minted after this check,
// otherwise "Title X" and "title x" silently fragment into two entries.
func (s *Store) FindExistingKeyCaseInsensitive(title string) (string, error) {
	want := DisplayName(Normalize(title))

	snapshot, err := s.GetAll()
	if err != nil {
		return "", err
	}
	for key := range snapshot {
		if DisplayName(key) == want {
			return key, nil
		}
	}
	return "", nil
}

// MissingMetadata returns the keys of entries that have no poster yet,
// in ascending key order. Feeds the backfill job and the admin report.
func (s *Store) MissingMetadata() ([]string, error) {
	snapshot, err := s.GetAll()
	if err != nil {
		return nil, err
	}

	var keys []string
	for key, entry := range snapshot {
		if entry.Meta.Poster == "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
