// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

// Package main is the entry point for the Giorgio server.
//
// Giorgio bridges a Jellyfin media server and a Discord guild. It
// receives playback webhooks from the Jellyfin Webhook plugin, records
// completed viewings in a relational store, and prompts allow-listed
// users on Discord to rate what they just watched. A periodic catalog
// sync mirrors Jellyfin's movie and episode library into the store,
// and a small HTTP API exposes watch and rating statistics.
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables layered over config.yaml
//     and built-in defaults (Koanf v2)
//  2. Database: PostgreSQL via GORM, with automatic migrations
//  3. Discord bot: discordgo session with button-based rating prompts
//  4. Catalog sync: periodic full sync from the Jellyfin API
//  5. HTTP server: webhook receiver and stats API on Chi
//
// All long-running components run under a suture supervisor tree, so
// a crash in the Discord session restarts that session without taking
// down the webhook receiver.
//
// # Configuration
//
// Required environment variables:
//   - DB_PASSWORD: PostgreSQL password
//   - JELLYFIN_URL: Jellyfin server URL (e.g., http://localhost:8096)
//   - JELLYFIN_API_KEY: API key from Admin Dashboard > API Keys
//   - DISCORD_BOT_TOKEN: Discord bot token
//   - DISCORD_CHANNEL_ID: channel that receives rating prompts
//
// Optional:
//   - NOTIFY_USERS: comma-separated Jellyfin usernames that get
//     rating prompts (users not listed are still tracked)
//   - SYNC_INTERVAL_HOURS: hours between catalog syncs (default: 6)
//   - API_PORT, LOG_LEVEL, LOG_FORMAT
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger a graceful shutdown: the HTTP server
// drains in-flight requests, the Discord session closes, and the
// supervisor reports any service that failed to stop in time.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giorgiobot/giorgio/internal/api"
	"github.com/giorgiobot/giorgio/internal/bot"
	"github.com/giorgiobot/giorgio/internal/config"
	"github.com/giorgiobot/giorgio/internal/database"
	"github.com/giorgiobot/giorgio/internal/logging"
	"github.com/giorgiobot/giorgio/internal/supervisor"
	"github.com/giorgiobot/giorgio/internal/sync"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("jellyfin_url", cfg.Jellyfin.URL).
		Str("db_host", cfg.Database.Host).
		Int("notify_users", len(cfg.Discord.NotifyUsers)).
		Msg("Starting Giorgio")

	db, err := database.New(cfg.Database, cfg.App.Debug)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	store := database.NewStore(db)

	// Discord bot and the notifier that feeds it rating prompts.
	discordBot, err := bot.New(cfg.Discord.BotToken, cfg.Discord.ChannelID, store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create Discord session")
	}
	notifier := bot.NewNotifier(discordBot)

	// Jellyfin catalog sync.
	jellyfinClient := sync.NewJellyfinClient(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey)
	if err := jellyfinClient.Ping(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Jellyfin unreachable at startup (sync will retry)")
	}
	syncer := sync.NewSyncer(jellyfinClient, store, cfg.Sync.Interval())

	handler := api.NewHandler(store, notifier, discordBot, cfg.App, cfg.Discord)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(discordBot)
	tree.AddMessagingService(notifier)
	tree.AddMessagingService(syncer)
	tree.AddAPIService(supervisor.NewHTTPService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutting down, waiting for services to stop")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Arrivederci!")
}
