// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/giorgiobot/giorgio/internal/bot"
	"github.com/giorgiobot/giorgio/internal/config"
	"github.com/giorgiobot/giorgio/internal/database"
)

// BotStatus is the readiness surface of the Discord bot the health
// endpoint reports on.
type BotStatus interface {
	IsReady() bool
}

// Handler carries the dependencies of all HTTP handlers.
type Handler struct {
	store     *database.Store
	notifier  bot.RatingNotifier
	botStatus BotStatus
	app       config.AppConfig
	discord   config.DiscordConfig
	validate  *validator.Validate
}

// NewHandler creates the HTTP handler set.
func NewHandler(store *database.Store, notifier bot.RatingNotifier, botStatus BotStatus, app config.AppConfig, discord config.DiscordConfig) *Handler {
	return &Handler{
		store:     store,
		notifier:  notifier,
		botStatus: botStatus,
		app:       app,
		discord:   discord,
		validate:  validator.New(),
	}
}

// Health reports service liveness and whether the Discord gateway
// session is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]interface{}{
		"status":    "ok",
		"app":       h.app.Name,
		"bot":       "Giorgio 🇮🇹",
		"bot_ready": h.botStatus.IsReady(),
	})
}
