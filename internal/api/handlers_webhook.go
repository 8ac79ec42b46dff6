// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package api

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"

	"github.com/giorgiobot/giorgio/internal/bot"
	"github.com/giorgiobot/giorgio/internal/logging"
	"github.com/giorgiobot/giorgio/internal/metrics"
	"github.com/giorgiobot/giorgio/internal/models"
)

// webhookStatus is the in-band outcome the webhook endpoint reports.
// The HTTP status is always 200 so Jellyfin's webhook plugin never
// retries or disables the destination.
type webhookStatus struct {
	Status string `json:"status"`          // "handled", "unhandled", "error"
	Event  string `json:"event,omitempty"` // set for "unhandled"
	Detail string `json:"detail,omitempty"`
}

// maxWebhookBody caps the request body read; Jellyfin payloads are a
// few KB.
const maxWebhookBody = 1 << 20

// Webhook receives Jellyfin webhook plugin notifications.
//
// The plugin posts JSON with a text/plain content type, so the body is
// decoded unconditionally. Unknown event types are acknowledged as
// unhandled rather than rejected.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	log := logging.Ctx(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read webhook body")
		rw.Success(webhookStatus{Status: "error", Detail: "failed to read body"})
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "error").Inc()
		return
	}

	var payload models.JellyfinWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error().Err(err).Msg("Invalid webhook JSON")
		rw.Success(webhookStatus{Status: "error", Detail: "invalid JSON"})
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "error").Inc()
		return
	}

	if err := h.validate.Struct(&payload); err != nil {
		log.Error().Err(err).Msg("Webhook validation failed")
		rw.Success(webhookStatus{Status: "error", Detail: err.Error()})
		metrics.WebhookEventsTotal.WithLabelValues(payload.NotificationType, "error").Inc()
		return
	}

	// Known event types are dispatched explicitly; everything else is
	// acknowledged as unhandled.
	switch payload.NotificationType {
	case "PlaybackStop":
		h.handlePlaybackStop(rw, r, &payload)
	default:
		log.Warn().Str("event", payload.NotificationType).Msg("Unhandled webhook event type")
		rw.Success(webhookStatus{Status: "unhandled", Event: payload.NotificationType})
		metrics.WebhookEventsTotal.WithLabelValues(payload.NotificationType, "unhandled").Inc()
	}
}

// handlePlaybackStop records a completed viewing and, for allow-listed
// users, hands a rating prompt to the Discord notifier.
func (h *Handler) handlePlaybackStop(rw *ResponseWriter, r *http.Request, payload *models.JellyfinWebhook) {
	ctx := r.Context()
	log := logging.Ctx(ctx)

	if !payload.Completed() {
		log.Info().
			Str("username", payload.NotificationUsername).
			Str("item", payload.ItemName).
			Msg("Playback stopped before the end")
		rw.Success(webhookStatus{Status: "handled"})
		metrics.WebhookEventsTotal.WithLabelValues(payload.NotificationType, "handled").Inc()
		return
	}

	label := payload.ContentLabel()
	log.Info().
		Str("username", payload.NotificationUsername).
		Str("content", label).
		Msg("Finished watching")

	fail := func(err error) {
		log.Error().Err(err).Str("content", label).Msg("Failed to persist watch event")
		rw.Success(webhookStatus{Status: "error", Detail: "database error"})
		metrics.WebhookEventsTotal.WithLabelValues(payload.NotificationType, "error").Inc()
	}

	user, err := h.store.GetOrCreateUser(ctx, payload.UserID, payload.NotificationUsername)
	if err != nil {
		fail(err)
		return
	}

	content := models.Content{
		ID:    payload.ItemID,
		Title: label,
		Kind:  payload.GetMediaType(),
		Year:  payload.Year,
	}
	if payload.ProviderTmdb != "" {
		tmdb := payload.ProviderTmdb
		content.TmdbID = &tmdb
	}
	if genres := payload.GenresList(); genres != nil {
		if raw, err := json.Marshal(genres); err == nil {
			content.Genres = datatypes.JSON(raw)
		}
	}

	stored, err := h.store.CreateContentIfAbsent(ctx, &content)
	if err != nil {
		fail(err)
		return
	}

	event, err := h.store.CreateWatchEvent(ctx, user.JellyfinID, stored.ID)
	if err != nil {
		fail(err)
		return
	}
	metrics.WatchEventsTotal.Inc()

	if h.discord.ShouldNotify(payload.NotificationUsername) {
		h.notifier.Notify(ctx, bot.RatingRequest{
			UserID:       payload.UserID,
			Username:     payload.NotificationUsername,
			ContentID:    stored.ID,
			ContentName:  label,
			ContentType:  payload.ItemType,
			WatchEventID: event.ID,
		})
	} else {
		log.Info().
			Str("username", payload.NotificationUsername).
			Msg("Watch event saved, no Discord notification")
	}

	rw.Success(webhookStatus{Status: "handled"})
	metrics.WebhookEventsTotal.WithLabelValues(payload.NotificationType, "handled").Inc()
}
