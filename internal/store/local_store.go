// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store implements the client's two-tier local persistence: an
// indexed sqlite tier for structured reads and a flattened JSON snapshot
// tier kept in lockstep for compatibility with earlier releases. When the
// sqlite tier cannot be opened the store degrades to snapshot-only mode:
// reads come from the snapshot file and queue writes become no-ops.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/internal/utils"
	"github.com/MKhiriev/nota-sync/models"
)

// StatusProvider reports whether the remote store is currently reachable.
// The store consults it on every mutation to decide whether the change
// must also be recorded in the sync queue.
type StatusProvider interface {
	IsOnline() bool
}

// LocalStore is the single entry point for all local persistence: notes,
// todos and folders in the indexed tier, whole-collection snapshots and
// settings in the flattened tier, plus the durable sync queue and the
// expiring cache.
type LocalStore struct {
	db        *DB // nil in degraded mode
	snapshots *SnapshotFile
	status    StatusProvider
	ids       *utils.UUIDGenerator
	logger    *logger.Logger

	now func() time.Time
}

func NewLocalStore(db *DB, snapshots *SnapshotFile, log *logger.Logger) *LocalStore {
	return &LocalStore{
		db:        db,
		snapshots: snapshots,
		ids:       utils.NewUUIDGenerator(),
		logger:    log,
		now:       time.Now,
	}
}

// SetStatusProvider wires the network monitor in after construction. With
// no provider set the store assumes it is offline and records every
// mutation in the sync queue; replay is idempotent, so over-recording is
// safe where under-recording would lose writes.
func (s *LocalStore) SetStatusProvider(status StatusProvider) {
	s.status = status
}

// Degraded reports whether the indexed tier is unavailable.
func (s *LocalStore) Degraded() bool {
	return s.db == nil
}

func (s *LocalStore) online() bool {
	return s.status != nil && s.status.IsOnline()
}

// Setting returns the persisted value for a settings key.
func (s *LocalStore) Setting(key string) (string, bool) {
	return s.snapshots.Setting(key)
}

func (s *LocalStore) SetSetting(key, value string) error {
	return s.snapshots.SetSetting(key, value)
}

func (s *LocalStore) DeleteSetting(key string) error {
	return s.snapshots.DeleteSetting(key)
}

// CollectionJSON returns the whole collection as a JSON array, serialized
// from the indexed tier when available, otherwise straight from the
// snapshot file. An empty collection serializes as [].
func (s *LocalStore) CollectionJSON(ctx context.Context, collection string) (json.RawMessage, error) {
	switch collection {
	case models.CollectionNotes:
		notes, err := s.GetAllNotes(ctx)
		if err != nil {
			return nil, err
		}
		if notes == nil {
			notes = []models.Note{}
		}
		return json.Marshal(notes)
	case models.CollectionTodos:
		todos, err := s.GetAllTodos(ctx)
		if err != nil {
			return nil, err
		}
		if todos == nil {
			todos = []models.TodoItem{}
		}
		return json.Marshal(todos)
	case models.CollectionFolders:
		folders, err := s.GetAllFolders(ctx)
		if err != nil {
			return nil, err
		}
		if folders == nil {
			folders = []models.Folder{}
		}
		return json.Marshal(folders)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
}

// ReplaceCollection overwrites the whole collection with the given JSON
// array, in both tiers. Used when a pull or a realtime update delivers the
// remote contents wholesale.
func (s *LocalStore) ReplaceCollection(ctx context.Context, collection string, records json.RawMessage) error {
	log := logger.FromContext(ctx)

	if len(records) == 0 {
		records = json.RawMessage("[]")
	}

	if s.db != nil {
		if err := s.replaceIndexed(ctx, collection, records); err != nil {
			log.Err(err).
				Str("func", "LocalStore.ReplaceCollection").
				Str("collection", collection).
				Msg("failed to replace indexed collection")
			return err
		}
	}

	key, err := snapshotKeyFor(collection)
	if err != nil {
		return err
	}
	if err = s.snapshots.SetSnapshot(key, records); err != nil {
		log.Err(err).
			Str("func", "LocalStore.ReplaceCollection").
			Str("collection", collection).
			Msg("failed to rewrite collection snapshot")
		return err
	}

	return nil
}

func (s *LocalStore) replaceIndexed(ctx context.Context, collection string, records json.RawMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin replace transaction: %w", err)
	}
	defer tx.Rollback()

	switch collection {
	case models.CollectionNotes:
		var notes []models.Note
		if err = json.Unmarshal(records, &notes); err != nil {
			return fmt.Errorf("failed to decode notes payload: %w", err)
		}
		if _, err = tx.ExecContext(ctx, clearNotes); err != nil {
			return fmt.Errorf("failed to clear notes: %w", err)
		}
		for _, note := range notes {
			if _, err = tx.ExecContext(ctx, upsertNote, note.ID, note.Title, note.Content, note.FolderID, note.CreatedAt, note.UpdatedAt, note.DeviceID); err != nil {
				return fmt.Errorf("failed to insert note (id=%s): %w", note.ID, err)
			}
		}
	case models.CollectionTodos:
		var todos []models.TodoItem
		if err = json.Unmarshal(records, &todos); err != nil {
			return fmt.Errorf("failed to decode todos payload: %w", err)
		}
		if _, err = tx.ExecContext(ctx, clearTodos); err != nil {
			return fmt.Errorf("failed to clear todos: %w", err)
		}
		for _, todo := range todos {
			if _, err = tx.ExecContext(ctx, upsertTodo, todoArgs(todo)...); err != nil {
				return fmt.Errorf("failed to insert todo (id=%s): %w", todo.ID, err)
			}
		}
	case models.CollectionFolders:
		var folders []models.Folder
		if err = json.Unmarshal(records, &folders); err != nil {
			return fmt.Errorf("failed to decode folders payload: %w", err)
		}
		if _, err = tx.ExecContext(ctx, clearFolders); err != nil {
			return fmt.Errorf("failed to clear folders: %w", err)
		}
		for _, folder := range folders {
			if _, err = tx.ExecContext(ctx, upsertFolder, folder.ID, folder.Name, folder.ParentID, folder.CreatedAt, folder.UpdatedAt, folder.DeviceID); err != nil {
				return fmt.Errorf("failed to insert folder (id=%s): %w", folder.ID, err)
			}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	return tx.Commit()
}

// MigrateLegacySnapshots copies the flattened snapshots into the indexed
// tier once per installation. The one-shot guard lives in the settings so
// repeated startups do not resurrect records deleted from sqlite.
func (s *LocalStore) MigrateLegacySnapshots(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if s.db == nil {
		return nil
	}
	if migrated, _ := s.snapshots.Setting(SettingCollectionsMigrated); migrated == "true" {
		return nil
	}

	for key, collection := range map[string]string{
		SnapshotNotes:   models.CollectionNotes,
		SnapshotTodos:   models.CollectionTodos,
		SnapshotFolders: models.CollectionFolders,
	} {
		records, ok := s.snapshots.Snapshot(key)
		if !ok {
			continue
		}
		if err := s.replaceIndexed(ctx, collection, records); err != nil {
			log.Err(err).
				Str("func", "LocalStore.MigrateLegacySnapshots").
				Str("collection", collection).
				Msg("failed to migrate legacy snapshot")
			return fmt.Errorf("failed to migrate legacy %s snapshot: %w", collection, err)
		}
	}

	if err := s.snapshots.SetSetting(SettingCollectionsMigrated, "true"); err != nil {
		return err
	}

	log.Debug().Str("func", "LocalStore.MigrateLegacySnapshots").Msg("legacy snapshots migrated to indexed tier")
	return nil
}

func snapshotKeyFor(collection string) (string, error) {
	switch collection {
	case models.CollectionNotes:
		return SnapshotNotes, nil
	case models.CollectionTodos:
		return SnapshotTodos, nil
	case models.CollectionFolders:
		return SnapshotFolders, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
}

// recordExists reports whether a record with the ID is already present,
// used to pick create vs update when recording an offline mutation.
func (s *LocalStore) recordExists(ctx context.Context, entity models.Entity, id string) bool {
	if s.db == nil {
		return s.snapshotHasRecord(entity, id)
	}

	var count int
	query := fmt.Sprintf(countRecord, tableFor(entity))
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return false
	}
	return count > 0
}

func (s *LocalStore) snapshotHasRecord(entity models.Entity, id string) bool {
	key, err := snapshotKeyFor(entity.Collection())
	if err != nil {
		return false
	}
	records, ok := s.snapshots.Snapshot(key)
	if !ok {
		return false
	}

	var stubs []struct {
		ID string `json:"id"`
	}
	if err = json.Unmarshal(records, &stubs); err != nil {
		return false
	}
	for _, stub := range stubs {
		if stub.ID == id {
			return true
		}
	}
	return false
}

func tableFor(entity models.Entity) string {
	return entity.Collection()
}

// recordOffline appends the mutation to the sync queue when the remote is
// unreachable. Queue failures are logged, not surfaced: the local write
// has already landed and must not be rolled back over bookkeeping.
func (s *LocalStore) recordOffline(ctx context.Context, op models.Operation, entity models.Entity, entityID string, record any) {
	if s.online() {
		return
	}

	log := logger.FromContext(ctx)

	var payload json.RawMessage
	if record != nil {
		data, err := json.Marshal(record)
		if err != nil {
			log.Err(err).
				Str("func", "LocalStore.recordOffline").
				Str("entity_id", entityID).
				Msg("failed to encode queue payload")
			return
		}
		payload = data
	}

	if err := s.Enqueue(ctx, op, entity, entityID, payload); err != nil {
		log.Err(err).
			Str("func", "LocalStore.recordOffline").
			Str("entity_id", entityID).
			Msg("failed to record offline mutation")
	}
}

// rewriteSnapshot re-serializes the whole collection from the indexed tier
// into the flattened tier. Called after every indexed mutation.
func (s *LocalStore) rewriteSnapshot(ctx context.Context, collection string) {
	log := logger.FromContext(ctx)

	records, err := s.CollectionJSON(ctx, collection)
	if err != nil {
		log.Err(err).
			Str("func", "LocalStore.rewriteSnapshot").
			Str("collection", collection).
			Msg("failed to serialize collection for snapshot")
		return
	}

	key, err := snapshotKeyFor(collection)
	if err != nil {
		return
	}
	if err = s.snapshots.SetSnapshot(key, records); err != nil {
		log.Err(err).
			Str("func", "LocalStore.rewriteSnapshot").
			Str("collection", collection).
			Msg("failed to persist collection snapshot")
	}
}
