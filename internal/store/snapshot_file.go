package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Legacy snapshot keys. Each key holds a whole collection as a JSON array,
// mirroring the flattened storage tier of earlier releases.
const (
	SnapshotNotes   = "notes"
	SnapshotTodos   = "nota-todo-items"
	SnapshotFolders = "folders"
)

// Settings keys persisted alongside the snapshots.
const (
	SettingSyncEnabled         = "firebase-sync-enabled"
	SettingAutoSync            = "firebase-auto-sync"
	SettingLastSync            = "firebase-last-sync"
	SettingDeviceID            = "firebase-device-id"
	SettingGoogleAccessToken   = "googleAccessToken"
	SettingGoogleTokenExpiry   = "googleTokenExpiry"
	SettingCalendarEnabled     = "googleCalendarEnabled"
	SettingCollectionsMigrated = "collections-migrated"
	SettingAuthUserID          = "auth-user-id"
	SettingAuthUserEmail       = "auth-user-email"
	SettingAuthIDToken         = "auth-id-token"
)

// SnapshotFile is the flattened storage tier: a single JSON file holding
// whole-collection snapshots plus small key-value settings. Every indexed
// write rewrites the affected snapshot so the file always mirrors the
// indexed tier; when the indexed tier is unavailable the file is the only
// source of truth.
type SnapshotFile struct {
	path string

	mu        sync.RWMutex
	snapshots map[string]json.RawMessage
	settings  map[string]string
}

type snapshotFileState struct {
	Snapshots map[string]json.RawMessage `json:"snapshots"`
	Settings  map[string]string          `json:"settings"`
}

func NewSnapshotFile(path string) (*SnapshotFile, error) {
	s := &SnapshotFile{
		path:      path,
		snapshots: make(map[string]json.RawMessage),
		settings:  make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SnapshotFile) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read snapshot file: %w", err)
	}

	var st snapshotFileState
	if err = json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode snapshot file: %w", err)
	}

	if st.Snapshots != nil {
		s.snapshots = st.Snapshots
	}
	if st.Settings != nil {
		s.settings = st.Settings
	}

	return nil
}

// persist must be called with s.mu held.
func (s *SnapshotFile) persist() error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	state := snapshotFileState{Snapshots: s.snapshots, Settings: s.settings}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot file: %w", err)
	}

	if err = os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}

	return nil
}

// Snapshot returns the stored collection snapshot for the key, if any.
func (s *SnapshotFile) Snapshot(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.snapshots[key]
	return data, ok
}

// SetSnapshot replaces the collection snapshot for the key and persists.
func (s *SnapshotFile) SetSnapshot(key string, data json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[key] = data
	return s.persist()
}

// Setting returns the stored value for a settings key.
func (s *SnapshotFile) Setting(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.settings[key]
	return value, ok
}

func (s *SnapshotFile) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings[key] = value
	return s.persist()
}

func (s *SnapshotFile) DeleteSetting(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.settings, key)
	return s.persist()
}
