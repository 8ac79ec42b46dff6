// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package models

import "time"

// MostWatchedEntry is one row of the most-watched ranking.
type MostWatchedEntry struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Kind       string   `json:"type"`
	Year       *int     `json:"year"`
	WatchCount int      `json:"watch_count"`
	AvgRating  *float64 `json:"avg_rating"`
}

// TopRatedEntry is one row of the top-rated ranking.
type TopRatedEntry struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Kind        string  `json:"type"`
	Year        *int    `json:"year"`
	AvgRating   float64 `json:"avg_rating"`
	RatingCount int     `json:"rating_count"`
}

// UserStats summarizes one user's viewing and rating activity.
type UserStats struct {
	UserID          string   `json:"user_id"`
	Username        string   `json:"username"`
	TotalWatched    int      `json:"total_watched"`
	TotalRated      int      `json:"total_rated"`
	AvgRatingGiven  *float64 `json:"avg_rating_given"`
	MoviesWatched   int      `json:"movies_watched"`
	EpisodesWatched int      `json:"episodes_watched"`
}

// CatalogStats counts the stored catalog by kind.
type CatalogStats struct {
	Total    int `json:"total"`
	Movies   int `json:"movies"`
	Episodes int `json:"episodes"`
}

// ActivityStats summarizes watch and rating volume.
type ActivityStats struct {
	TotalWatches int      `json:"total_watches"`
	TotalRatings int      `json:"total_ratings"`
	AvgRating    *float64 `json:"avg_rating"`
}

// GlobalStats is the service-wide rollup.
type GlobalStats struct {
	Users    int           `json:"users"`
	Catalog  CatalogStats  `json:"catalog"`
	Activity ActivityStats `json:"activity"`
}

// RecentActivityEntry is one row of the recent-activity feed.
type RecentActivityEntry struct {
	Username     string     `json:"username"`
	ContentTitle string     `json:"content_title"`
	ContentKind  string     `json:"content_type"`
	Rating       *int       `json:"rating"`
	WatchedAt    time.Time  `json:"watched_at"`
	RatedAt      *time.Time `json:"rated_at"`
}
