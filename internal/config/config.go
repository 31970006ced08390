// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// StructuredConfig is the top-level configuration container for the
// nota-sync client. It aggregates all sub-configurations and is populated by
// merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Remote holds endpoint addresses and timeouts for the remote document
	// store and identity provider.
	Remote Remote `envPrefix:"REMOTE_"`

	// Storage holds configuration for the on-device persistence tiers:
	// the indexed sqlite database and the legacy snapshot file.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds timing knobs for auto-sync debouncing, connectivity
	// probing, and pending-count polling.
	Sync Sync `envPrefix:"SYNC_"`

	// Calendar holds the external calendar provider settings.
	Calendar Calendar `envPrefix:"CALENDAR_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Remote holds network settings for the remote document store.
type Remote struct {
	// BaseURL is the HTTP base URL of the remote store and identity
	// provider (e.g. "https://sync.nota.app").
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// WSBaseURL is the websocket base URL used for realtime collection
	// subscriptions. When empty it is derived from BaseURL by swapping
	// the scheme to ws/wss.
	// Env: REMOTE_WS_BASE_URL
	WSBaseURL string `env:"WS_BASE_URL"`

	// RequestTimeout is the default timeout for outbound requests
	// (e.g. "15s", "1m").
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration for the two local persistence tiers.
type Storage struct {
	// DB holds the sqlite database settings.
	DB DB `envPrefix:"DB_"`

	// Snapshot holds the legacy flattened snapshot file settings.
	Snapshot Snapshot `envPrefix:"SNAPSHOT_"`
}

// DB holds connection settings for the indexed sqlite store.
type DB struct {
	// Path is the sqlite database file path (e.g. "nota.db").
	// Env: STORAGE_DB_PATH
	Path string `env:"PATH"`
}

// Snapshot holds settings for the legacy flattened snapshot file that backs
// reads when the indexed store is unavailable.
type Snapshot struct {
	// Path is the JSON snapshot file path (e.g. "nota-snapshots.json").
	// Env: STORAGE_SNAPSHOT_PATH
	Path string `env:"PATH"`
}

// Sync holds timing configuration for the synchronization machinery.
type Sync struct {
	// Debounce is how long a burst of local edits is coalesced before a
	// single auto-sync push runs (e.g. "2s").
	// Env: SYNC_DEBOUNCE
	Debounce time.Duration `env:"DEBOUNCE"`

	// ProbeInterval is how often the network monitor probes the remote
	// store for connectivity (e.g. "15s").
	// Env: SYNC_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// PendingPollInterval is how often the pending-sync count is polled
	// from the local store for status display (e.g. "30s").
	// Env: SYNC_PENDING_POLL_INTERVAL
	PendingPollInterval time.Duration `env:"PENDING_POLL_INTERVAL"`
}

// Calendar holds settings for the external calendar provider.
type Calendar struct {
	// BaseURL is the calendar API base URL.
	// Env: CALENDAR_BASE_URL
	BaseURL string `env:"BASE_URL"`
}

// Default values applied by GetClientConfig when a field is not provided by
// any configuration source.
const (
	DefaultRequestTimeout      = 15 * time.Second
	DefaultDebounce            = 2 * time.Second
	DefaultProbeInterval       = 15 * time.Second
	DefaultPendingPollInterval = 30 * time.Second
	DefaultDBPath              = "nota.db"
	DefaultSnapshotPath        = "nota-snapshots.json"
	DefaultCalendarBaseURL     = "https://www.googleapis.com/calendar/v3"
)

// GetStructuredConfig assembles the merged configuration from environment
// variables, command-line flags, and the optional JSON file.
func GetStructuredConfig() (*StructuredConfig, error) {
	cfg, err := newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
	if err != nil {
		return nil, fmt.Errorf("error building config: %w", err)
	}

	return cfg, nil
}
