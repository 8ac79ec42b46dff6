// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package models

import (
	"fmt"
	"strings"
	"time"
)

// JellyfinWebhook represents a webhook payload from Jellyfin.
// Requires: https://github.com/jellyfin/jellyfin-plugin-webhook
//
// Field names mirror the plugin's template variables, which is why they
// are PascalCase with the occasional underscore.
type JellyfinWebhook struct {
	// Event information
	NotificationType string    `json:"NotificationType" validate:"required"` // "PlaybackStop", "ItemAdded", etc.
	Timestamp        time.Time `json:"Timestamp" validate:"required"`

	// User information
	UserID               string `json:"UserId" validate:"required"`
	NotificationUsername string `json:"NotificationUsername" validate:"required"`

	// Item information
	ItemID   string `json:"ItemId" validate:"required"`
	ItemName string `json:"Name" validate:"required"`
	ItemType string `json:"ItemType" validate:"required"` // "Movie", "Episode"

	// Episode specific
	SeriesName    string `json:"SeriesName,omitempty"`
	SeasonNumber  *int   `json:"SeasonNumber,omitempty"`
	EpisodeNumber *int   `json:"EpisodeNumber,omitempty"`

	// Not always present
	PlayedToCompletion *bool  `json:"PlayedToCompletion,omitempty"`
	Year               *int   `json:"Year,omitempty"`
	ProviderTmdb       string `json:"Provider_tmdb,omitempty"`

	// Genres is a raw comma-separated string, parsed via GenresList.
	Genres string `json:"Genres,omitempty"`
}

// GetMediaType returns the normalized media type (movie, episode).
func (w *JellyfinWebhook) GetMediaType() string {
	return strings.ToLower(w.ItemType)
}

// IsEpisode returns true for episode payloads.
func (w *JellyfinWebhook) IsEpisode() bool {
	return strings.EqualFold(w.ItemType, "Episode")
}

// Completed returns true if playback ran to the end of the content.
func (w *JellyfinWebhook) Completed() bool {
	return w.PlayedToCompletion != nil && *w.PlayedToCompletion
}

// ContentLabel returns the display title used for storage and Discord
// prompts. Episodes become "Breaking Bad S1E5", movies "Dune (2021)".
func (w *JellyfinWebhook) ContentLabel() string {
	if w.IsEpisode() {
		season, episode := 0, 0
		if w.SeasonNumber != nil {
			season = *w.SeasonNumber
		}
		if w.EpisodeNumber != nil {
			episode = *w.EpisodeNumber
		}
		return fmt.Sprintf("%s S%dE%d", w.SeriesName, season, episode)
	}
	if w.Year != nil {
		return fmt.Sprintf("%s (%d)", w.ItemName, *w.Year)
	}
	return w.ItemName
}

// GenresList parses the raw comma-separated Genres field.
func (w *JellyfinWebhook) GenresList() []string {
	if w.Genres == "" {
		return nil
	}
	parts := strings.Split(w.Genres, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}
