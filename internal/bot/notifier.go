// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package bot

import (
	"context"
	"time"

	"github.com/giorgiobot/giorgio/internal/logging"
)

const (
	// readyTimeout bounds how long the mailbox worker waits for the
	// Discord gateway before starting to drain requests.
	readyTimeout = 5 * time.Second

	// ackTimeout bounds how long Notify waits for a prompt to be
	// delivered to Discord.
	ackTimeout = 10 * time.Second

	// mailboxSize absorbs a burst of playback-stop events while the
	// bot reconnects.
	mailboxSize = 32
)

// RatingRequest describes one rating prompt to send to Discord.
type RatingRequest struct {
	UserID       string
	Username     string
	ContentID    string
	ContentName  string
	ContentType  string // "Movie" or "Episode"
	WatchEventID uint
}

// PromptSender is the surface of the Discord bot the notifier drives.
type PromptSender interface {
	// Ready returns a channel that is closed once the Discord
	// gateway session is established.
	Ready() <-chan struct{}

	// SendRatingPrompt posts the rating message with its buttons.
	SendRatingPrompt(ctx context.Context, req RatingRequest) error
}

// RatingNotifier is what the webhook pipeline holds: a fire-and-forget
// handoff that never fails the webhook itself.
type RatingNotifier interface {
	Notify(ctx context.Context, req RatingRequest)
}

// envelope pairs a request with its delivery acknowledgement.
type envelope struct {
	req RatingRequest
	ack chan error
}

// Notifier bridges the webhook handler and the Discord bot through a
// buffered mailbox. Notify enqueues and waits for an acknowledgement
// with a timeout; delivery failures are logged, never propagated, so a
// broken Discord session cannot fail webhook processing.
type Notifier struct {
	sender  PromptSender
	mailbox chan envelope
}

var _ RatingNotifier = (*Notifier)(nil)

// NewNotifier creates a Notifier for the given sender. Serve must be
// running for Notify to make progress.
func NewNotifier(sender PromptSender) *Notifier {
	return &Notifier{
		sender:  sender,
		mailbox: make(chan envelope, mailboxSize),
	}
}

// Notify enqueues a rating prompt and waits for delivery or timeout.
// All failure modes are logged and swallowed.
func (n *Notifier) Notify(ctx context.Context, req RatingRequest) {
	env := envelope{req: req, ack: make(chan error, 1)}

	select {
	case n.mailbox <- env:
	case <-time.After(ackTimeout):
		logging.Error().
			Str("content", req.ContentName).
			Msg("Rating prompt dropped, notifier mailbox full")
		return
	case <-ctx.Done():
		return
	}

	select {
	case err := <-env.ack:
		if err != nil {
			logging.Error().Err(err).
				Str("content", req.ContentName).
				Msg("Failed to send rating prompt")
		}
	case <-time.After(ackTimeout):
		logging.Error().
			Str("content", req.ContentName).
			Msg("Timed out waiting for rating prompt delivery")
	case <-ctx.Done():
	}
}

// Serve implements suture.Service. It waits for the Discord session to
// come up, then drains the mailbox until the context is cancelled.
func (n *Notifier) Serve(ctx context.Context) error {
	select {
	case <-n.sender.Ready():
	case <-time.After(readyTimeout):
		// Keep draining anyway; individual sends will fail and be
		// reported through their acks.
		logging.Warn().Msg("Discord session not ready, draining mailbox regardless")
	case <-ctx.Done():
		return ctx.Err()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-n.mailbox:
			env.ack <- n.sender.SendRatingPrompt(ctx, env.req)
		}
	}
}

// String names the service in supervisor logs.
func (n *Notifier) String() string { return "rating-notifier" }
