package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSnapshotFile(t *testing.T) *SnapshotFile {
	t.Helper()

	s, err := NewSnapshotFile(filepath.Join(t.TempDir(), "snapshots.json"))
	require.NoError(t, err)
	return s
}

// TestSnapshotFile_MissingFileIsEmpty verifies that a fresh path yields an
// empty store rather than an error.
func TestSnapshotFile_MissingFileIsEmpty(t *testing.T) {
	s := newTestSnapshotFile(t)

	_, ok := s.Snapshot(SnapshotNotes)
	assert.False(t, ok)

	_, ok = s.Setting(SettingSyncEnabled)
	assert.False(t, ok)
}

// TestSnapshotFile_PersistAndReload verifies that snapshots and settings
// survive a reload from disk.
func TestSnapshotFile_PersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")

	s, err := NewSnapshotFile(path)
	require.NoError(t, err)

	require.NoError(t, s.SetSnapshot(SnapshotNotes, json.RawMessage(`[{"id":"n1"}]`)))
	require.NoError(t, s.SetSetting(SettingDeviceID, "device_1_abc"))

	reloaded, err := NewSnapshotFile(path)
	require.NoError(t, err)

	records, ok := reloaded.Snapshot(SnapshotNotes)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"n1"}]`, string(records))

	value, ok := reloaded.Setting(SettingDeviceID)
	require.True(t, ok)
	assert.Equal(t, "device_1_abc", value)
}

// TestSnapshotFile_DeleteSetting verifies removal is persisted.
func TestSnapshotFile_DeleteSetting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")

	s, err := NewSnapshotFile(path)
	require.NoError(t, err)

	require.NoError(t, s.SetSetting(SettingGoogleAccessToken, "tok"))
	require.NoError(t, s.DeleteSetting(SettingGoogleAccessToken))

	reloaded, err := NewSnapshotFile(path)
	require.NoError(t, err)

	_, ok := reloaded.Setting(SettingGoogleAccessToken)
	assert.False(t, ok)
}

// TestSnapshotFile_CorruptFile verifies the wrapped decode error.
func TestSnapshotFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewSnapshotFile(path)
	assert.Nil(t, s)
	assert.ErrorContains(t, err, "decode snapshot file")
}
