// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

/*
jellyfin_client.go - Jellyfin REST API Client

This file implements a REST API client for Jellyfin media server,
limited to the item listing the catalog sync needs.

API Reference: https://api.jellyfin.org/
*/

// Package sync keeps the local catalog aligned with the Jellyfin
// library through periodic full scans of the /Items endpoint.
package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/giorgiobot/giorgio/internal/models"
)

// itemFields is the set of /Items fields the catalog needs.
const itemFields = "Genres,ProviderIds,RunTimeTicks,ProductionYear,SeriesName,ParentIndexNumber,IndexNumber"

// JellyfinClientInterface defines the Jellyfin API operations the sync
// depends on. Tests substitute a fake.
type JellyfinClientInterface interface {
	Ping(ctx context.Context) error
	GetItems(ctx context.Context, itemType string) ([]models.JellyfinItem, error)
}

// Ensure JellyfinClient implements JellyfinClientInterface
var _ JellyfinClientInterface = (*JellyfinClient)(nil)

// JellyfinClient provides access to the Jellyfin REST API.
type JellyfinClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewJellyfinClient creates a new Jellyfin API client.
//
// Parameters:
//   - baseURL: Jellyfin server URL (e.g., http://localhost:8096)
//   - apiKey: Jellyfin API key from Admin Dashboard > API Keys
func NewJellyfinClient(baseURL, apiKey string) *JellyfinClient {
	// Normalize URL (remove trailing slash)
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &JellyfinClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// GetItems retrieves every library item of the given type.
//
// itemType is the Jellyfin item type, "Movie" or "Episode". The query
// is recursive so items are found regardless of library folder layout.
func (c *JellyfinClient) GetItems(ctx context.Context, itemType string) ([]models.JellyfinItem, error) {
	params := url.Values{}
	params.Set("IncludeItemTypes", itemType)
	params.Set("Recursive", "true")
	params.Set("Fields", itemFields)

	resp, err := c.doRequest(ctx, "/Items?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("jellyfin items request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("jellyfin items returned status %d (failed to read body)", resp.StatusCode)
		}
		return nil, fmt.Errorf("jellyfin items returned status %d: %s", resp.StatusCode, string(body))
	}

	var items models.JellyfinItemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode jellyfin items: %w", err)
	}

	return items.Items, nil
}

// Ping tests connectivity to the Jellyfin server.
func (c *JellyfinClient) Ping(ctx context.Context) error {
	resp, err := c.doRequest(ctx, "/System/Ping")
	if err != nil {
		return fmt.Errorf("jellyfin ping failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jellyfin ping returned status %d", resp.StatusCode)
	}

	return nil
}

// doRequest performs an HTTP GET request to the Jellyfin API.
func (c *JellyfinClient) doRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	fullURL := c.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set authorization header using API key
	req.Header.Set("X-Emby-Token", c.apiKey)
	req.Header.Set("X-Emby-Client", "Giorgio")
	req.Header.Set("X-Emby-Device-Name", "Giorgio")
	req.Header.Set("X-Emby-Device-Id", "giorgio")
	req.Header.Set("X-Emby-Client-Version", "1.0.0")
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}
