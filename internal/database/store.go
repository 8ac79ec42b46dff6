// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/giorgiobot/giorgio/internal/logging"
	"github.com/giorgiobot/giorgio/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store provides CRUD access to users, contents and watch events.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on top of an open GORM connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetOrCreateUser returns the user with the given Jellyfin ID, creating
// it with the given username if it does not exist. The username of an
// existing user is left untouched.
func (s *Store) GetOrCreateUser(ctx context.Context, jellyfinID, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "jellyfin_id = ?", jellyfinID).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user %s: %w", jellyfinID, err)
	}

	user = models.User{JellyfinID: jellyfinID, Username: username}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", jellyfinID, err)
	}

	logging.Info().Str("username", username).Msg("New user created")
	return &user, nil
}

// GetUser returns the user with the given Jellyfin ID, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, jellyfinID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "jellyfin_id = ?", jellyfinID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %s: %w", jellyfinID, err)
	}
	return &user, nil
}

// CreateContentIfAbsent inserts the content if no row with its ID
// exists, and returns the stored row. Existing rows are never
// refreshed; the catalog keeps the metadata captured at first sight.
func (s *Store) CreateContentIfAbsent(ctx context.Context, content *models.Content) (*models.Content, error) {
	var existing models.Content
	err := s.db.WithContext(ctx).First(&existing, "id = ?", content.ID).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up content %s: %w", content.ID, err)
	}

	if err := s.db.WithContext(ctx).Create(content).Error; err != nil {
		return nil, fmt.Errorf("failed to create content %s: %w", content.ID, err)
	}

	logging.Info().Str("title", content.Title).Msg("New content added")
	return content, nil
}

// CreateWatchEvent records a completed viewing, with no rating yet.
func (s *Store) CreateWatchEvent(ctx context.Context, userID, contentID string) (*models.WatchEvent, error) {
	event := models.WatchEvent{
		UserID:    userID,
		ContentID: contentID,
		WatchedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to create watch event: %w", err)
	}

	logging.Info().
		Str("user_id", userID).
		Str("content_id", contentID).
		Msg("Watch event recorded")
	return &event, nil
}

// UpdateRating sets the rating and rated_at timestamp on a watch
// event. Returns ErrNotFound when the event does not exist, which
// callers may treat as a stale prompt rather than a failure.
func (s *Store) UpdateRating(ctx context.Context, watchEventID uint, rating int) error {
	if rating < 1 || rating > 10 {
		return fmt.Errorf("rating %d out of range 1-10", rating)
	}

	now := time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&models.WatchEvent{}).
		Where("id = ?", watchEventID).
		Updates(map[string]interface{}{"rating": rating, "rated_at": now})
	if res.Error != nil {
		return fmt.Errorf("failed to update rating for watch event %d: %w", watchEventID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	logging.Info().
		Uint("watch_event_id", watchEventID).
		Int("rating", rating).
		Msg("Rating updated")
	return nil
}
