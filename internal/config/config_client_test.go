package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestApplyDefaults_FillsUnsetFields verifies that every default kicks in on
// an empty config.
func TestApplyDefaults_FillsUnsetFields(t *testing.T) {
	cfg := &ClientConfig{Remote: Remote{BaseURL: "https://sync.example"}}
	cfg.applyDefaults()

	assert.Equal(t, DefaultRequestTimeout, cfg.Remote.RequestTimeout)
	assert.Equal(t, "wss://sync.example", cfg.Remote.WSBaseURL)
	assert.Equal(t, DefaultDBPath, cfg.Storage.DB.Path)
	assert.Equal(t, DefaultSnapshotPath, cfg.Storage.Snapshot.Path)
	assert.Equal(t, DefaultDebounce, cfg.Sync.Debounce)
	assert.Equal(t, DefaultProbeInterval, cfg.Sync.ProbeInterval)
	assert.Equal(t, DefaultPendingPollInterval, cfg.Sync.PendingPollInterval)
	assert.Equal(t, DefaultCalendarBaseURL, cfg.Calendar.BaseURL)
}

// TestApplyDefaults_KeepsExplicitValues verifies that provided values are
// not overwritten by defaults.
func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &ClientConfig{
		Remote:  Remote{BaseURL: "http://sync.example", WSBaseURL: "ws://other.example", RequestTimeout: time.Minute},
		Storage: Storage{DB: DB{Path: "custom.db"}},
		Sync:    Sync{Debounce: 5 * time.Second},
	}
	cfg.applyDefaults()

	assert.Equal(t, time.Minute, cfg.Remote.RequestTimeout)
	assert.Equal(t, "ws://other.example", cfg.Remote.WSBaseURL)
	assert.Equal(t, "custom.db", cfg.Storage.DB.Path)
	assert.Equal(t, 5*time.Second, cfg.Sync.Debounce)
}

// TestDeriveWSBaseURL covers the scheme swap table.
func TestDeriveWSBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "https to wss", input: "https://sync.example", expected: "wss://sync.example"},
		{name: "http to ws", input: "http://localhost:8080", expected: "ws://localhost:8080"},
		{name: "unknown scheme unchanged", input: "grpc://sync.example", expected: "grpc://sync.example"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deriveWSBaseURL(tt.input))
		})
	}
}

// TestValidate covers the validation error table.
func TestValidate(t *testing.T) {
	valid := ClientConfig{
		Remote:  Remote{BaseURL: "https://sync.example", RequestTimeout: time.Second},
		Storage: Storage{DB: DB{Path: "nota.db"}},
		Sync:    Sync{Debounce: time.Second, ProbeInterval: time.Second, PendingPollInterval: time.Second},
	}

	tests := []struct {
		name     string
		mutate   func(*ClientConfig)
		expected error
	}{
		{name: "valid", mutate: func(*ClientConfig) {}, expected: nil},
		{name: "missing base url", mutate: func(c *ClientConfig) { c.Remote.BaseURL = "" }, expected: ErrInvalidRemoteConfigs},
		{name: "empty db path", mutate: func(c *ClientConfig) { c.Storage.DB.Path = "" }, expected: ErrInvalidStorageConfigs},
		{name: "in-memory db path", mutate: func(c *ClientConfig) { c.Storage.DB.Path = ":memory:" }, expected: ErrInvalidStorageConfigs},
		{name: "zero debounce", mutate: func(c *ClientConfig) { c.Sync.Debounce = 0 }, expected: ErrInvalidSyncConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expected)
			}
		})
	}
}
