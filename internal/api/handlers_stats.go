// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/giorgiobot/giorgio/internal/database"
)

const (
	defaultLimit      = 10
	maxLimit          = 100
	defaultMinRatings = 1
)

// queryInt parses an integer query parameter with a default and an
// upper bound.
func queryInt(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// GlobalStats serves GET /api/stats.
func (h *Handler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	stats, err := h.store.GlobalStats(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(stats)
}

// MostWatched serves GET /api/stats/most-watched.
func (h *Handler) MostWatched(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	limit := queryInt(r, "limit", defaultLimit, maxLimit)

	rows, err := h.store.MostWatched(r.Context(), limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(rows)
}

// TopRated serves GET /api/stats/top-rated.
func (h *Handler) TopRated(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	limit := queryInt(r, "limit", defaultLimit, maxLimit)
	minRatings := queryInt(r, "min_ratings", defaultMinRatings, maxLimit)

	rows, err := h.store.TopRated(r.Context(), limit, minRatings)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(rows)
}

// RecentActivity serves GET /api/stats/recent.
func (h *Handler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	limit := queryInt(r, "limit", defaultLimit, maxLimit)

	rows, err := h.store.RecentActivity(r.Context(), limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(rows)
}

// UserStats serves GET /api/stats/user/{userID}.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := chi.URLParam(r, "userID")

	stats, err := h.store.UserStats(r.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("User not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(stats)
}
