// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/giorgiobot/giorgio/internal/bot"
	"github.com/giorgiobot/giorgio/internal/config"
	"github.com/giorgiobot/giorgio/internal/database"
)

// fakeNotifier records rating requests instead of talking to Discord.
type fakeNotifier struct {
	mu       sync.Mutex
	requests []bot.RatingRequest
}

func (f *fakeNotifier) Notify(ctx context.Context, req bot.RatingRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// fakeBotStatus reports a fixed readiness.
type fakeBotStatus struct{ ready bool }

func (f fakeBotStatus) IsReady() bool { return f.ready }

// testServer assembles the real router on an in-memory database.
func testServer(t *testing.T) (http.Handler, *database.Store, *fakeNotifier) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	store := database.NewStore(db)
	notifier := &fakeNotifier{}
	app := config.AppConfig{Name: "Giorgio"}
	discord := config.DiscordConfig{NotifyUsers: []string{"asmo"}}
	handler := NewHandler(store, notifier, fakeBotStatus{ready: true}, app, discord)

	return NewRouter(handler), store, notifier
}

// postWebhook sends a payload the way Jellyfin's plugin does, with a
// text/plain content type.
func postWebhook(t *testing.T, router http.Handler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

const playbackStopPayload = `{
	"NotificationType": "PlaybackStop",
	"ItemId": "item-1",
	"ItemType": "Movie",
	"Name": "Dune",
	"UserId": "jf-1",
	"NotificationUsername": "%s",
	"Timestamp": "2026-08-30T20:15:00Z",
	"PlayedToCompletion": %s,
	"Year": 2021,
	"Provider_tmdb": "438631",
	"Genres": "Sci-Fi, Adventure"
}`

func TestWebhookPlaybackStopHandled(t *testing.T) {
	router, store, notifier := testServer(t)

	rec := postWebhook(t, router, fmt.Sprintf(playbackStopPayload, "asmo", "true"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := decodeStatus(t, rec); body["status"] != "handled" {
		t.Errorf("status = %q, want handled", body["status"])
	}

	// User, content and watch event are persisted.
	user, err := store.GetUser(context.Background(), "jf-1")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if user.Username != "asmo" {
		t.Errorf("username = %q", user.Username)
	}

	// Allow-listed user gets a rating prompt.
	if notifier.count() != 1 {
		t.Fatalf("notifier calls = %d, want 1", notifier.count())
	}
	req := notifier.requests[0]
	if req.ContentName != "Dune (2021)" || req.WatchEventID == 0 {
		t.Errorf("unexpected rating request: %+v", req)
	}

	// The prompt's watch-event id resolves to a stored, ratable event.
	if err := store.UpdateRating(context.Background(), req.WatchEventID, 9); err != nil {
		t.Errorf("watch event not persisted: %v", err)
	}
}

func TestWebhookSkipsNotificationForUnlistedUser(t *testing.T) {
	router, store, notifier := testServer(t)

	rec := postWebhook(t, router, fmt.Sprintf(playbackStopPayload, "mallory", "true"))
	if body := decodeStatus(t, rec); body["status"] != "handled" {
		t.Errorf("status = %q, want handled", body["status"])
	}

	// Watch event persisted for every user, prompt for none but the
	// allow-listed ones.
	stats, err := store.UserStats(context.Background(), "jf-1")
	if err != nil {
		t.Fatalf("user stats lookup failed: %v", err)
	}
	if stats.TotalWatched != 1 {
		t.Errorf("watch events = %d, want 1", stats.TotalWatched)
	}
	if notifier.count() != 0 {
		t.Errorf("notifier calls = %d, want 0", notifier.count())
	}
}

func TestWebhookIncompletePlayback(t *testing.T) {
	router, store, notifier := testServer(t)

	rec := postWebhook(t, router, fmt.Sprintf(playbackStopPayload, "asmo", "false"))
	if body := decodeStatus(t, rec); body["status"] != "handled" {
		t.Errorf("status = %q, want handled", body["status"])
	}

	// Nothing is persisted for an abandoned viewing.
	if _, err := store.GetUser(context.Background(), "jf-1"); err == nil {
		t.Error("user should not be created for incomplete playback")
	}
	if notifier.count() != 0 {
		t.Errorf("notifier calls = %d, want 0", notifier.count())
	}
}

func TestWebhookUnhandledEventType(t *testing.T) {
	router, _, _ := testServer(t)

	payload := `{
		"NotificationType": "ItemAdded",
		"ItemId": "item-9",
		"ItemType": "Movie",
		"Name": "Nosferatu",
		"UserId": "jf-1",
		"NotificationUsername": "asmo",
		"Timestamp": "2026-08-30T20:15:00Z"
	}`
	rec := postWebhook(t, router, payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeStatus(t, rec)
	if body["status"] != "unhandled" || body["event"] != "ItemAdded" {
		t.Errorf("body = %v", body)
	}
}

func TestWebhookInvalidJSON(t *testing.T) {
	router, _, _ := testServer(t)

	rec := postWebhook(t, router, "not json at all")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even for bad input", rec.Code)
	}
	if body := decodeStatus(t, rec); body["status"] != "error" {
		t.Errorf("status = %q, want error", body["status"])
	}
}

func TestWebhookMissingRequiredFields(t *testing.T) {
	router, _, _ := testServer(t)

	rec := postWebhook(t, router, `{"NotificationType": "PlaybackStop"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := decodeStatus(t, rec); body["status"] != "error" {
		t.Errorf("status = %q, want error", body["status"])
	}
}

func TestWebhookEpisodeLabel(t *testing.T) {
	router, _, notifier := testServer(t)

	payload := `{
		"NotificationType": "PlaybackStop",
		"ItemId": "ep-1",
		"ItemType": "Episode",
		"Name": "Ozymandias",
		"UserId": "jf-1",
		"NotificationUsername": "asmo",
		"Timestamp": "2026-08-30T20:15:00Z",
		"PlayedToCompletion": true,
		"SeriesName": "Breaking Bad",
		"SeasonNumber": 5,
		"EpisodeNumber": 14
	}`
	rec := postWebhook(t, router, payload)
	if body := decodeStatus(t, rec); body["status"] != "handled" {
		t.Fatalf("status = %q, want handled", body["status"])
	}

	if notifier.count() != 1 {
		t.Fatalf("notifier calls = %d, want 1", notifier.count())
	}
	if got := notifier.requests[0].ContentName; got != "Breaking Bad S5E14" {
		t.Errorf("content name = %q", got)
	}
	if notifier.requests[0].ContentType != "Episode" {
		t.Errorf("content type = %q", notifier.requests[0].ContentType)
	}
}

func TestHealth(t *testing.T) {
	router, _, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
	if body["app"] != "Giorgio" {
		t.Errorf("app = %v, want configured app name", body["app"])
	}
	if body["bot_ready"] != true {
		t.Errorf("bot_ready = %v, want true", body["bot_ready"])
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
