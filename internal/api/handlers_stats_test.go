// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/giorgiobot/giorgio/internal/database"
	"github.com/giorgiobot/giorgio/internal/models"
)

// seedStats records two users watching three titles, with a few
// ratings spread across them.
func seedStats(t *testing.T, store *database.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.GetOrCreateUser(ctx, "jf-1", "asmo"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := store.GetOrCreateUser(ctx, "jf-2", "luca"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	year := 2021
	contents := []*models.Content{
		{ID: "movie-1", Title: "Dune (2021)", Kind: models.ContentKindMovie, Year: &year},
		{ID: "movie-2", Title: "Arrival (2016)", Kind: models.ContentKindMovie},
		{ID: "ep-1", Title: "Breaking Bad S05E14", Kind: models.ContentKindEpisode},
	}
	for _, c := range contents {
		if _, err := store.CreateContentIfAbsent(ctx, c); err != nil {
			t.Fatalf("seed content: %v", err)
		}
	}

	type watch struct {
		user, content string
		rating        int
	}
	watches := []watch{
		{"jf-1", "movie-1", 8},
		{"jf-2", "movie-1", 9},
		{"jf-1", "movie-2", 10},
		{"jf-1", "ep-1", 0},
		{"jf-2", "ep-1", 0},
	}
	for _, w := range watches {
		event, err := store.CreateWatchEvent(ctx, w.user, w.content)
		if err != nil {
			t.Fatalf("seed watch: %v", err)
		}
		if w.rating > 0 {
			if err := store.UpdateRating(ctx, event.ID, w.rating); err != nil {
				t.Fatalf("seed rating: %v", err)
			}
		}
	}
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGlobalStatsEndpoint(t *testing.T) {
	router, store, _ := testServer(t)
	seedStats(t, store)

	rec := get(t, router, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var stats models.GlobalStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if stats.Users != 2 {
		t.Errorf("total users = %d, want 2", stats.Users)
	}
	if stats.Catalog.Movies != 2 || stats.Catalog.Episodes != 1 {
		t.Errorf("catalog = %+v", stats.Catalog)
	}
	if stats.Activity.TotalWatches != 5 || stats.Activity.TotalRatings != 3 {
		t.Errorf("activity = %+v", stats.Activity)
	}
	if stats.Activity.AvgRating == nil || *stats.Activity.AvgRating != 9 {
		t.Errorf("avg rating = %v, want 9", stats.Activity.AvgRating)
	}
}

func TestMostWatchedEndpoint(t *testing.T) {
	router, store, _ := testServer(t)
	seedStats(t, store)

	rec := get(t, router, "/api/stats/most-watched?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var rows []models.MostWatchedEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].WatchCount != 2 {
		t.Errorf("top watch count = %d, want 2", rows[0].WatchCount)
	}
}

func TestTopRatedEndpoint(t *testing.T) {
	router, store, _ := testServer(t)
	seedStats(t, store)

	rec := get(t, router, "/api/stats/top-rated?min_ratings=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var rows []models.TopRatedEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	// Only movie-1 has two ratings. Its average of 8 and 9 rounds to
	// one decimal.
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].ID != "movie-1" || rows[0].AvgRating != 8.5 {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestRecentActivityEndpoint(t *testing.T) {
	router, store, _ := testServer(t)
	seedStats(t, store)

	rec := get(t, router, "/api/stats/recent?limit=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var rows []models.RecentActivityEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("rows = %d, want 3", len(rows))
	}
	for _, row := range rows {
		if row.Username == "" || row.ContentTitle == "" {
			t.Errorf("incomplete row: %+v", row)
		}
	}
}

func TestUserStatsEndpoint(t *testing.T) {
	router, store, _ := testServer(t)
	seedStats(t, store)

	rec := get(t, router, "/api/stats/user/jf-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var stats models.UserStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if stats.Username != "asmo" {
		t.Errorf("username = %q", stats.Username)
	}
	if stats.TotalWatched != 3 || stats.TotalRated != 2 {
		t.Errorf("counts = %d watched, %d rated", stats.TotalWatched, stats.TotalRated)
	}
	if stats.AvgRatingGiven == nil || *stats.AvgRatingGiven != 9 {
		t.Errorf("avg rating = %v, want 9", stats.AvgRatingGiven)
	}
	if stats.MoviesWatched != 2 || stats.EpisodesWatched != 1 {
		t.Errorf("kind counts = %d movies, %d episodes", stats.MoviesWatched, stats.EpisodesWatched)
	}
}

func TestUserStatsUnknownUser(t *testing.T) {
	router, _, _ := testServer(t)

	rec := get(t, router, "/api/stats/user/nobody")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("error code = %q", resp.Error.Code)
	}
}

func TestQueryIntBounds(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 10},
		{"abc", 10},
		{"0", 10},
		{"-3", 10},
		{"25", 25},
		{"5000", 100},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/stats/most-watched?limit="+tt.raw, nil)
		if got := queryInt(r, "limit", defaultLimit, maxLimit); got != tt.want {
			t.Errorf("queryInt(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
