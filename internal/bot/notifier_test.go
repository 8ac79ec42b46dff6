// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeSender records delivered prompts and can be made to fail.
type fakeSender struct {
	ready chan struct{}

	mu   sync.Mutex
	sent []RatingRequest
	err  error
}

func newFakeSender() *fakeSender {
	return &fakeSender{ready: make(chan struct{})}
}

func (f *fakeSender) Ready() <-chan struct{} { return f.ready }

func (f *fakeSender) SendRatingPrompt(ctx context.Context, req RatingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeSender) delivered() []RatingRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RatingRequest(nil), f.sent...)
}

func TestNotifierDeliversPrompt(t *testing.T) {
	sender := newFakeSender()
	close(sender.ready)

	notifier := NewNotifier(sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = notifier.Serve(ctx) }()

	req := RatingRequest{
		UserID:       "jf-1",
		Username:     "asmo",
		ContentID:    "item-1",
		ContentName:  "Dune (2021)",
		ContentType:  "Movie",
		WatchEventID: 7,
	}
	notifier.Notify(context.Background(), req)

	delivered := sender.delivered()
	if len(delivered) != 1 {
		t.Fatalf("expected 1 delivered prompt, got %d", len(delivered))
	}
	if delivered[0].WatchEventID != 7 || delivered[0].ContentName != "Dune (2021)" {
		t.Errorf("unexpected delivery: %+v", delivered[0])
	}
}

func TestNotifierSwallowsSendErrors(t *testing.T) {
	sender := newFakeSender()
	sender.err = errors.New("discord down")
	close(sender.ready)

	notifier := NewNotifier(sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = notifier.Serve(ctx) }()

	// Must return normally; a broken Discord session never fails the
	// caller.
	notifier.Notify(context.Background(), RatingRequest{ContentName: "Stalker"})
}

func TestNotifierRespectsCallerContext(t *testing.T) {
	sender := newFakeSender() // never ready, no Serve running

	notifier := NewNotifier(sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	notifier.Notify(ctx, RatingRequest{ContentName: "Dune (2021)"})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Notify blocked %v after context cancel", elapsed)
	}
}

func TestNotifierServeStopsOnCancel(t *testing.T) {
	sender := newFakeSender()
	close(sender.ready)

	notifier := NewNotifier(sender)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- notifier.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop on cancel")
	}
}
