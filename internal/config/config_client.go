package config

import (
	"fmt"
	"strings"
)

// ClientConfig is the validated client configuration view assembled from
// [StructuredConfig] with defaults applied.
type ClientConfig struct {
	// Remote contains remote-store endpoint settings.
	Remote Remote
	// Storage contains local persistence settings.
	Storage Storage
	// Sync contains synchronization timing settings.
	Sync Sync
	// Calendar contains external calendar provider settings.
	Calendar Calendar
}

// GetClientConfig builds and validates the client config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], applies defaults for
// every unset field, derives the websocket base URL from the HTTP base URL
// when none is given, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Remote:   cfg.Remote,
		Storage:  cfg.Storage,
		Sync:     cfg.Sync,
		Calendar: cfg.Calendar,
	}
	clientCfg.applyDefaults()

	return clientCfg, clientCfg.validate()
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.Remote.RequestTimeout <= 0 {
		cfg.Remote.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Remote.WSBaseURL == "" {
		cfg.Remote.WSBaseURL = deriveWSBaseURL(cfg.Remote.BaseURL)
	}
	if cfg.Storage.DB.Path == "" {
		cfg.Storage.DB.Path = DefaultDBPath
	}
	if cfg.Storage.Snapshot.Path == "" {
		cfg.Storage.Snapshot.Path = DefaultSnapshotPath
	}
	if cfg.Sync.Debounce <= 0 {
		cfg.Sync.Debounce = DefaultDebounce
	}
	if cfg.Sync.ProbeInterval <= 0 {
		cfg.Sync.ProbeInterval = DefaultProbeInterval
	}
	if cfg.Sync.PendingPollInterval <= 0 {
		cfg.Sync.PendingPollInterval = DefaultPendingPollInterval
	}
	if cfg.Calendar.BaseURL == "" {
		cfg.Calendar.BaseURL = DefaultCalendarBaseURL
	}
}

// deriveWSBaseURL converts an http(s) base URL into its ws(s) counterpart.
func deriveWSBaseURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return baseURL
}
