// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

// Package models defines the persistent entities, the Jellyfin wire
// payloads, and the stats result types shared across Giorgio.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Content kinds as stored in the catalog.
const (
	ContentKindMovie   = "movie"
	ContentKindEpisode = "episode"
)

// User is a Jellyfin user known to Giorgio. Users are created lazily
// the first time a playback event for them arrives.
type User struct {
	// JellyfinID is the Jellyfin user UUID.
	JellyfinID string `gorm:"primaryKey;size:36" json:"jellyfin_id"`

	// Username is the Jellyfin display name captured at first sight.
	Username string `gorm:"size:100;not null" json:"username"`

	// DiscordID links the user to a Discord account. Unset until the
	// user is paired manually.
	DiscordID *string `gorm:"size:20" json:"discord_id,omitempty"`

	WatchEvents []WatchEvent `gorm:"foreignKey:UserID" json:"-"`
}

// TableName overrides the default pluralization.
func (User) TableName() string { return "users" }

// Content is a movie or episode in the catalog.
type Content struct {
	// ID is the Jellyfin item UUID.
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// Title is the display title. Episodes are stored as
	// "Series S01E05" so they are self-describing in stats output.
	Title string `gorm:"size:255;not null" json:"title"`

	// Kind is "movie" or "episode".
	Kind string `gorm:"column:type;size:20;not null" json:"type"`

	Year *int `json:"year,omitempty"`

	// Genres is a JSON array of genre names, e.g. ["Action","Sci-Fi"].
	Genres datatypes.JSON `json:"genres,omitempty"`

	TmdbID *string `gorm:"size:20" json:"tmdb_id,omitempty"`

	// Length is the runtime in minutes.
	Length *int `json:"length,omitempty"`

	WatchEvents []WatchEvent `gorm:"foreignKey:ContentID" json:"-"`
}

// TableName overrides the default pluralization.
func (Content) TableName() string { return "contents" }

// WatchEvent records one completed viewing of a content by a user,
// optionally carrying the rating the user gave afterwards.
type WatchEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID    string `gorm:"size:36;not null;index" json:"user_id"`
	ContentID string `gorm:"size:36;not null;index" json:"content_id"`

	// Rating is 1 to 10, nil until the user rates.
	Rating *int `json:"rating,omitempty"`

	WatchedAt time.Time  `gorm:"not null" json:"watched_at"`
	RatedAt   *time.Time `json:"rated_at,omitempty"`

	User    User    `gorm:"foreignKey:UserID;references:JellyfinID" json:"-"`
	Content Content `gorm:"foreignKey:ContentID;references:ID" json:"-"`
}

// TableName keeps the historical table name.
func (WatchEvent) TableName() string { return "watchlogs" }
