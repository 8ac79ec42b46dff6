// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

// Package metrics exposes Prometheus instrumentation for the webhook
// pipeline, the catalog sync, and the Discord rating flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Webhook Metrics
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giorgio_webhook_events_total",
			Help: "Total number of webhook events received, by event type and outcome",
		},
		[]string{"event_type", "status"}, // status: "handled", "unhandled", "error"
	)

	WatchEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "giorgio_watch_events_total",
			Help: "Total number of completed viewings recorded",
		},
	)

	// Rating Metrics
	RatingPromptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "giorgio_rating_prompts_total",
			Help: "Total number of rating prompts sent to Discord",
		},
	)

	RatingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giorgio_ratings_total",
			Help: "Total number of ratings collected, by value",
		},
		[]string{"rating"},
	)

	RatingPromptsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "giorgio_rating_prompts_expired_total",
			Help: "Total number of rating prompts that expired unanswered",
		},
	)

	// Sync Metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giorgio_sync_runs_total",
			Help: "Total number of catalog sync runs, by result",
		},
		[]string{"result"}, // "success", "error"
	)

	SyncItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giorgio_sync_items_total",
			Help: "Total number of catalog items processed by sync, by kind",
		},
		[]string{"kind"}, // "movie", "episode"
	)

	SyncItemErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "giorgio_sync_item_errors_total",
			Help: "Total number of catalog items skipped due to errors",
		},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "giorgio_sync_duration_seconds",
			Help:    "Duration of full catalog sync runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
)
