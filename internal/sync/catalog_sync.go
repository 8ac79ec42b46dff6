// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package sync

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"

	"github.com/giorgiobot/giorgio/internal/logging"
	"github.com/giorgiobot/giorgio/internal/metrics"
	"github.com/giorgiobot/giorgio/internal/models"
)

// ContentStore is the slice of the persistence layer the sync writes to.
type ContentStore interface {
	CreateContentIfAbsent(ctx context.Context, content *models.Content) (*models.Content, error)
}

// Result summarizes one full catalog sync run.
type Result struct {
	Movies   int           `json:"movies"`
	Episodes int           `json:"episodes"`
	Duration time.Duration `json:"-"`
}

// Syncer performs full catalog scans against Jellyfin and records
// every item not yet present in the store. It runs once at startup and
// then on a fixed interval, as a supervised service.
type Syncer struct {
	client   JellyfinClientInterface
	store    ContentStore
	interval time.Duration
}

// NewSyncer creates a Syncer.
func NewSyncer(client JellyfinClientInterface, store ContentStore, interval time.Duration) *Syncer {
	return &Syncer{
		client:   client,
		store:    store,
		interval: interval,
	}
}

// FullSync scans movies and episodes and returns per-kind counts.
// A transport failure for one kind is logged and yields a zero count
// for that kind; the run itself still completes.
func (s *Syncer) FullSync(ctx context.Context) *Result {
	logging.Info().Msg("Starting full catalog sync")
	start := time.Now()

	movies := s.syncKind(ctx, "Movie", models.ContentKindMovie)
	episodes := s.syncKind(ctx, "Episode", models.ContentKindEpisode)

	elapsed := time.Since(start)
	metrics.SyncDuration.Observe(elapsed.Seconds())
	metrics.SyncRunsTotal.WithLabelValues("success").Inc()

	logging.Info().
		Int("movies", movies).
		Int("episodes", episodes).
		Dur("duration", elapsed).
		Msg("Full catalog sync completed")

	return &Result{Movies: movies, Episodes: episodes, Duration: elapsed}
}

// syncKind fetches all items of one Jellyfin type and stores the ones
// not yet in the catalog. Per-item failures are logged and skipped.
func (s *Syncer) syncKind(ctx context.Context, itemType, kind string) int {
	items, err := s.client.GetItems(ctx, itemType)
	if err != nil {
		logging.Error().Err(err).Str("item_type", itemType).Msg("Failed to fetch items from Jellyfin")
		metrics.SyncRunsTotal.WithLabelValues("error").Inc()
		return 0
	}

	count := 0
	for i := range items {
		if err := s.storeItem(ctx, &items[i], kind); err != nil {
			logging.Error().Err(err).
				Str("item_id", items[i].ID).
				Str("title", items[i].Name).
				Msg("Failed to sync item")
			metrics.SyncItemErrors.Inc()
			continue
		}
		count++
	}

	metrics.SyncItemsTotal.WithLabelValues(kind).Add(float64(count))
	logging.Info().Int("count", count).Str("kind", kind).Msg("Synced items")
	return count
}

// storeItem converts a Jellyfin item to a catalog row and inserts it
// if absent.
func (s *Syncer) storeItem(ctx context.Context, item *models.JellyfinItem, kind string) error {
	title := item.Name
	if kind == models.ContentKindEpisode {
		title = item.EpisodeTitle()
	}

	var year *int
	if item.ProductionYear > 0 {
		y := item.ProductionYear
		year = &y
	}

	var genres datatypes.JSON
	if len(item.Genres) > 0 {
		raw, err := json.Marshal(item.Genres)
		if err != nil {
			return err
		}
		genres = datatypes.JSON(raw)
	}

	content := models.Content{
		ID:     item.ID,
		Title:  title,
		Kind:   kind,
		Year:   year,
		Genres: genres,
		TmdbID: item.TmdbID(),
		Length: item.LengthMinutes(),
	}

	_, err := s.store.CreateContentIfAbsent(ctx, &content)
	return err
}

// Serve implements suture.Service. It runs a full sync immediately,
// then repeats on the configured interval until the context is
// cancelled.
func (s *Syncer) Serve(ctx context.Context) error {
	s.FullSync(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			logging.Info().Dur("interval", s.interval).Msg("Periodic sync triggered")
			s.FullSync(ctx)
		}
	}
}

// String names the service in supervisor logs.
func (s *Syncer) String() string { return "catalog-sync" }
