// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables
// and an optional config file.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines.
type Config struct {
	App      AppConfig      `koanf:"app"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Jellyfin JellyfinConfig `koanf:"jellyfin"`
	Discord  DiscordConfig  `koanf:"discord"`
	Sync     SyncConfig     `koanf:"sync"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// AppConfig holds application identity settings.
type AppConfig struct {
	Name  string `koanf:"name"`  // Application name used in logs and /health
	Debug bool   `koanf:"debug"` // Debug flag enables verbose SQL logging
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds relational database connection settings.
//
// Environment Variables:
//   - DB_HOST: Database host (default: 127.0.0.1)
//   - DB_PORT: Database port (default: 5432)
//   - DB_NAME: Database name (default: giorgio)
//   - DB_USER: Database user (default: giorgio)
//   - DB_PASSWORD: Database password (required)
type DatabaseConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Name     string `koanf:"name"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

// DSN returns the connection string for the configured database.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// JellyfinConfig holds Jellyfin API connection settings for the catalog sync.
//
// Environment Variables:
//   - JELLYFIN_URL: Jellyfin server URL (e.g., http://localhost:8096)
//   - JELLYFIN_API_KEY: Jellyfin API key from Admin Dashboard > API Keys
type JellyfinConfig struct {
	URL    string `koanf:"url"`     // Jellyfin server URL (http://localhost:8096)
	APIKey string `koanf:"api_key"` // Jellyfin API key for authentication
}

// DiscordConfig holds Discord bot settings for the rating collector.
//
// NotifyUsers is the allow-list of usernames (matched case-insensitively
// against the webhook's NotificationUsername) that receive rating prompts.
// Users not on the list still have their watch events persisted.
//
// Environment Variables:
//   - DISCORD_BOT_TOKEN: Bot token (required)
//   - DISCORD_CHANNEL_ID: Channel that receives rating prompts (required)
//   - NOTIFY_USERS: Comma-separated usernames eligible for prompts
type DiscordConfig struct {
	BotToken    string   `koanf:"bot_token"`
	ChannelID   string   `koanf:"channel_id"`
	NotifyUsers []string `koanf:"notify_users"`
}

// ShouldNotify reports whether the given media-server username is on the
// rating-prompt allow-list. Matching is case-insensitive.
func (c DiscordConfig) ShouldNotify(username string) bool {
	for _, u := range c.NotifyUsers {
		if strings.EqualFold(u, username) {
			return true
		}
	}
	return false
}

// SyncConfig holds catalog synchronization settings.
type SyncConfig struct {
	// IntervalHours is how often the full catalog sync runs after the
	// startup run. Default: 6
	IntervalHours int `koanf:"interval_hours"`
}

// Interval returns the sync period as a time.Duration.
func (c SyncConfig) Interval() time.Duration {
	return time.Duration(c.IntervalHours) * time.Hour
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks that required fields are present and values are sane.
// Returns an error describing the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Jellyfin.URL == "" {
		return fmt.Errorf("JELLYFIN_URL is required")
	}
	if c.Jellyfin.APIKey == "" {
		return fmt.Errorf("JELLYFIN_API_KEY is required")
	}
	if c.Discord.BotToken == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if c.Discord.ChannelID == "" {
		return fmt.Errorf("DISCORD_CHANNEL_ID is required")
	}
	if c.Sync.IntervalHours < 1 {
		return fmt.Errorf("sync interval must be at least 1 hour, got %d", c.Sync.IntervalHours)
	}
	return nil
}
