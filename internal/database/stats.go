// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package database

import (
	"context"
	"fmt"
	"math"

	"github.com/giorgiobot/giorgio/internal/models"
)

// MostWatched returns the contents with the most watch events,
// including the average rating where any ratings exist.
func (s *Store) MostWatched(ctx context.Context, limit int) ([]models.MostWatchedEntry, error) {
	var rows []models.MostWatchedEntry
	err := s.db.WithContext(ctx).
		Table("contents").
		Select("contents.id, contents.title, contents.type AS kind, contents.year, "+
			"COUNT(watchlogs.id) AS watch_count, AVG(watchlogs.rating) AS avg_rating").
		Joins("JOIN watchlogs ON watchlogs.content_id = contents.id").
		Group("contents.id, contents.title, contents.type, contents.year").
		Order("watch_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("most-watched query failed: %w", err)
	}

	for i := range rows {
		rows[i].AvgRating = roundPtr(rows[i].AvgRating)
	}
	return rows, nil
}

// TopRated returns the contents with the highest average rating among
// those with at least minRatings ratings.
func (s *Store) TopRated(ctx context.Context, limit, minRatings int) ([]models.TopRatedEntry, error) {
	var rows []models.TopRatedEntry
	err := s.db.WithContext(ctx).
		Table("contents").
		Select("contents.id, contents.title, contents.type AS kind, contents.year, "+
			"AVG(watchlogs.rating) AS avg_rating, COUNT(watchlogs.rating) AS rating_count").
		Joins("JOIN watchlogs ON watchlogs.content_id = contents.id").
		Where("watchlogs.rating IS NOT NULL").
		Group("contents.id, contents.title, contents.type, contents.year").
		Having("COUNT(watchlogs.rating) >= ?", minRatings).
		Order("avg_rating DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top-rated query failed: %w", err)
	}

	for i := range rows {
		rows[i].AvgRating = round1(rows[i].AvgRating)
	}
	return rows, nil
}

// UserStats returns viewing and rating statistics for one user, or
// ErrNotFound when the user does not exist.
func (s *Store) UserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := models.UserStats{
		UserID:   user.JellyfinID,
		Username: user.Username,
	}

	db := s.db.WithContext(ctx)

	var totalWatched int64
	if err := db.Model(&models.WatchEvent{}).
		Where("user_id = ?", userID).
		Count(&totalWatched).Error; err != nil {
		return nil, fmt.Errorf("user stats query failed: %w", err)
	}
	stats.TotalWatched = int(totalWatched)

	var totalRated int64
	if err := db.Model(&models.WatchEvent{}).
		Where("user_id = ? AND rating IS NOT NULL", userID).
		Count(&totalRated).Error; err != nil {
		return nil, fmt.Errorf("user stats query failed: %w", err)
	}
	stats.TotalRated = int(totalRated)

	var avgRating *float64
	if err := db.Model(&models.WatchEvent{}).
		Where("user_id = ? AND rating IS NOT NULL", userID).
		Select("AVG(rating)").
		Scan(&avgRating).Error; err != nil {
		return nil, fmt.Errorf("user stats query failed: %w", err)
	}
	stats.AvgRatingGiven = roundPtr(avgRating)

	kindCount := func(kind string) (int, error) {
		var n int64
		err := db.Model(&models.WatchEvent{}).
			Joins("JOIN contents ON contents.id = watchlogs.content_id").
			Where("watchlogs.user_id = ? AND contents.type = ?", userID, kind).
			Count(&n).Error
		return int(n), err
	}

	if stats.MoviesWatched, err = kindCount(models.ContentKindMovie); err != nil {
		return nil, fmt.Errorf("user stats query failed: %w", err)
	}
	if stats.EpisodesWatched, err = kindCount(models.ContentKindEpisode); err != nil {
		return nil, fmt.Errorf("user stats query failed: %w", err)
	}

	return &stats, nil
}

// GlobalStats returns the service-wide rollup of users, catalog size
// and activity.
func (s *Store) GlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	db := s.db.WithContext(ctx)

	count := func(model interface{}, query string, args ...interface{}) (int, error) {
		var n int64
		q := db.Model(model)
		if query != "" {
			q = q.Where(query, args...)
		}
		err := q.Count(&n).Error
		return int(n), err
	}

	var stats models.GlobalStats
	var err error

	if stats.Users, err = count(&models.User{}, ""); err != nil {
		return nil, fmt.Errorf("global stats query failed: %w", err)
	}
	if stats.Catalog.Total, err = count(&models.Content{}, ""); err != nil {
		return nil, fmt.Errorf("global stats query failed: %w", err)
	}
	if stats.Catalog.Movies, err = count(&models.Content{}, "type = ?", models.ContentKindMovie); err != nil {
		return nil, fmt.Errorf("global stats query failed: %w", err)
	}
	if stats.Catalog.Episodes, err = count(&models.Content{}, "type = ?", models.ContentKindEpisode); err != nil {
		return nil, fmt.Errorf("global stats query failed: %w", err)
	}
	if stats.Activity.TotalWatches, err = count(&models.WatchEvent{}, ""); err != nil {
		return nil, fmt.Errorf("global stats query failed: %w", err)
	}
	if stats.Activity.TotalRatings, err = count(&models.WatchEvent{}, "rating IS NOT NULL"); err != nil {
		return nil, fmt.Errorf("global stats query failed: %w", err)
	}

	var avgRating *float64
	if err := db.Model(&models.WatchEvent{}).
		Where("rating IS NOT NULL").
		Select("AVG(rating)").
		Scan(&avgRating).Error; err != nil {
		return nil, fmt.Errorf("global stats query failed: %w", err)
	}
	stats.Activity.AvgRating = roundPtr(avgRating)

	return &stats, nil
}

// RecentActivity returns the latest watch events, newest first.
func (s *Store) RecentActivity(ctx context.Context, limit int) ([]models.RecentActivityEntry, error) {
	var rows []models.RecentActivityEntry
	err := s.db.WithContext(ctx).
		Table("watchlogs").
		Select("users.username, contents.title AS content_title, contents.type AS content_kind, "+
			"watchlogs.rating, watchlogs.watched_at, watchlogs.rated_at").
		Joins("JOIN users ON users.jellyfin_id = watchlogs.user_id").
		Joins("JOIN contents ON contents.id = watchlogs.content_id").
		Order("watchlogs.watched_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recent activity query failed: %w", err)
	}
	return rows, nil
}

// round1 rounds to one decimal place, matching the precision of the
// stats API responses.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round1(*v)
	return &r
}
