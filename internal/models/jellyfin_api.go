// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package models

import (
	"fmt"
)

// JellyfinItemsResponse is the envelope returned by Jellyfin's /Items
// endpoint. Documentation: https://api.jellyfin.org/
type JellyfinItemsResponse struct {
	Items            []JellyfinItem `json:"Items"`
	TotalRecordCount int            `json:"TotalRecordCount"`
	StartIndex       int            `json:"StartIndex"`
}

// JellyfinItem is a catalog item from the /Items listing, limited to
// the fields the sync requests.
type JellyfinItem struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
	Type string `json:"Type"` // "Movie", "Episode"

	// Episode specific
	SeriesName        string `json:"SeriesName,omitempty"`
	ParentIndexNumber int    `json:"ParentIndexNumber,omitempty"` // Season number
	IndexNumber       int    `json:"IndexNumber,omitempty"`       // Episode number

	ProductionYear int               `json:"ProductionYear,omitempty"`
	Genres         []string          `json:"Genres,omitempty"`
	ProviderIDs    map[string]string `json:"ProviderIds,omitempty"`
	RunTimeTicks   int64             `json:"RunTimeTicks,omitempty"` // 100ns units
}

// EpisodeTitle formats an episode item as "Breaking Bad S01E05".
func (i *JellyfinItem) EpisodeTitle() string {
	series := i.SeriesName
	if series == "" {
		series = "Unknown"
	}
	return fmt.Sprintf("%s S%02dE%02d", series, i.ParentIndexNumber, i.IndexNumber)
}

// LengthMinutes converts RunTimeTicks to whole minutes.
// Returns nil when the item has no runtime.
func (i *JellyfinItem) LengthMinutes() *int {
	if i.RunTimeTicks == 0 {
		return nil
	}
	minutes := int(i.RunTimeTicks / 10_000_000 / 60)
	return &minutes
}

// TmdbID returns the TMDB provider ID, or nil when absent.
func (i *JellyfinItem) TmdbID() *string {
	if id, ok := i.ProviderIDs["Tmdb"]; ok && id != "" {
		return &id
	}
	return nil
}
