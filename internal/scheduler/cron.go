package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"kinodex/internal/catalog"
	"kinodex/internal/services/tmdb"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron          *cron.Cron
	store         *catalog.Store
	svc           *catalog.Service
	tmdbClient    *tmdb.Client
	backfillHours int
	logger        *logrus.Logger
}

// NewScheduler creates a new scheduler. tmdbClient may be nil, in which
// case no backfill job is registered.
func NewScheduler(store *catalog.Store, svc *catalog.Service, tmdbClient *tmdb.Client, backfillHours int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		store:         store,
		svc:           svc,
		tmdbClient:    tmdbClient,
		backfillHours: backfillHours,
		logger:        logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if s.tmdbClient == nil {
		s.logger.Info("No TMDB client configured, metadata backfill disabled")
		return nil
	}

	s.logger.Info("Starting scheduler")

	spec := fmt.Sprintf("0 */%d * * *", s.backfillHours)
	_, err := s.cron.AddFunc(spec, func() {
		s.runBackfill()
	})
	if err != nil {
		return fmt.Errorf("failed to add backfill job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Run an initial backfill right away
	go s.runBackfill()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runBackfill looks up metadata for every entry still missing a poster.
// Per-entry failures are logged and skipped; one bad title never stops
// the run.
func (s *Scheduler) runBackfill() {
	s.logger.Info("Running metadata backfill")
	ctx := context.Background()

	keys, err := s.store.MissingMetadata()
	if err != nil {
		s.logger.WithError(err).Error("Failed to list entries missing metadata")
		return
	}
	if len(keys) == 0 {
		s.logger.Debug("No entries missing metadata")
		return
	}

	enriched := 0
	for _, key := range keys {
		result, err := s.tmdbClient.Lookup(ctx, catalog.DisplayName(key))
		if err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Metadata lookup failed")
			continue
		}
		if result == nil {
			s.logger.WithField("key", key).Debug("No metadata match")
			continue
		}

		if err := s.applyMetadata(key, result); err != nil {
			s.logger.WithError(err).WithField("key", key).Error("Failed to persist metadata")
			continue
		}
		enriched++
	}

	if enriched > 0 {
		s.svc.Invalidate()
	}

	s.logger.WithFields(logrus.Fields{
		"missing":  len(keys),
		"enriched": enriched,
	}).Info("Metadata backfill completed")
}

func (s *Scheduler) applyMetadata(key string, result *tmdb.Result) error {
	if result.Poster != "" {
		if err := s.store.SetMetaField(key, "poster", result.Poster); err != nil {
			return err
		}
	}
	if result.Year != "" {
		if err := s.store.SetMetaField(key, "year", result.Year); err != nil {
			return err
		}
	}
	if result.TMDBID != 0 {
		if err := s.store.SetMetaField(key, "tmdb_id", result.TMDBID); err != nil {
			return err
		}
	}
	return s.store.SetMetaField(key, "is_series", result.IsSeries)
}
