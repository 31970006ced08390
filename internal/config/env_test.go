package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseEnv_Empty verifies that parsing with no relevant environment
// variables leaves the config zero-valued.
func TestParseEnv_Empty(t *testing.T) {
	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))
	assert.Equal(t, &StructuredConfig{}, cfg)
}

// TestParseEnv_RemoteGroup verifies REMOTE_* variable mapping.
func TestParseEnv_RemoteGroup(t *testing.T) {
	t.Setenv("REMOTE_BASE_URL", "https://env.example")
	t.Setenv("REMOTE_WS_BASE_URL", "wss://env.example")
	t.Setenv("REMOTE_REQUEST_TIMEOUT", "20s")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "https://env.example", cfg.Remote.BaseURL)
	assert.Equal(t, "wss://env.example", cfg.Remote.WSBaseURL)
	assert.Equal(t, 20*time.Second, cfg.Remote.RequestTimeout)
}

// TestParseEnv_StorageAndSyncGroups verifies STORAGE_* and SYNC_* mapping.
func TestParseEnv_StorageAndSyncGroups(t *testing.T) {
	t.Setenv("STORAGE_DB_PATH", "env.db")
	t.Setenv("STORAGE_SNAPSHOT_PATH", "env-snapshots.json")
	t.Setenv("SYNC_DEBOUNCE", "3s")
	t.Setenv("SYNC_PROBE_INTERVAL", "10s")
	t.Setenv("SYNC_PENDING_POLL_INTERVAL", "1m")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "env.db", cfg.Storage.DB.Path)
	assert.Equal(t, "env-snapshots.json", cfg.Storage.Snapshot.Path)
	assert.Equal(t, 3*time.Second, cfg.Sync.Debounce)
	assert.Equal(t, 10*time.Second, cfg.Sync.ProbeInterval)
	assert.Equal(t, time.Minute, cfg.Sync.PendingPollInterval)
}

// TestParseEnv_InvalidDuration verifies that an unparsable duration value
// surfaces as an error.
func TestParseEnv_InvalidDuration(t *testing.T) {
	t.Setenv("SYNC_DEBOUNCE", "not-a-duration")

	cfg := &StructuredConfig{}
	assert.Error(t, parseEnv(cfg))
}

// TestParseEnv_ConfigPath verifies the CONFIG variable mapping.
func TestParseEnv_ConfigPath(t *testing.T) {
	t.Setenv("CONFIG", "/etc/nota/config.json")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))
	assert.Equal(t, "/etc/nota/config.json", cfg.JSONFilePath)
}
