// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/models"
)

// Enqueue appends a mutation to the durable sync queue. In degraded mode
// the queue has no durable home and the call is a silent no-op.
func (s *LocalStore) Enqueue(ctx context.Context, op models.Operation, entity models.Entity, entityID string, payload json.RawMessage) error {
	log := logger.FromContext(ctx)

	if s.db == nil {
		log.Debug().
			Str("func", "LocalStore.Enqueue").
			Str("entity_id", entityID).
			Msg("indexed tier unavailable, dropping queue entry")
		return nil
	}

	var data sql.NullString
	if len(payload) > 0 {
		data = sql.NullString{String: string(payload), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, insertQueueEntry, string(op), string(entity), entityID, data, s.now())
	if err != nil {
		log.Err(err).
			Str("func", "LocalStore.Enqueue").
			Str("entity_id", entityID).
			Msg("failed to insert sync queue entry")
		return fmt.Errorf("failed to enqueue mutation (entity_id=%s): %w", entityID, err)
	}

	return nil
}

// PendingEntries returns the unsynced queue entries in insertion order.
func (s *LocalStore) PendingEntries(ctx context.Context) ([]models.SyncQueueEntry, error) {
	log := logger.FromContext(ctx)

	if s.db == nil {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, getPendingQueueEntries)
	if err != nil {
		log.Err(err).
			Str("func", "LocalStore.PendingEntries").
			Msg("failed to query pending queue entries")
		return nil, fmt.Errorf("failed to query pending queue entries: %w", err)
	}
	defer rows.Close()

	var entries []models.SyncQueueEntry

	for rows.Next() {
		var entry models.SyncQueueEntry
		var op, entity string
		var payload sql.NullString

		scanErr := rows.Scan(
			&entry.ID,
			&op,
			&entity,
			&entry.EntityID,
			&payload,
			&entry.Timestamp,
			&entry.Synced,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "LocalStore.PendingEntries").
				Msg("failed to scan queue entry row")
			return nil, fmt.Errorf("failed to scan queue entry row: %w", scanErr)
		}

		entry.Operation = models.Operation(op)
		entry.Entity = models.Entity(entity)
		if payload.Valid {
			entry.Payload = json.RawMessage(payload.String)
		}

		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "LocalStore.PendingEntries").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating queue entry rows: %w", rowsErr)
	}

	return entries, nil
}

// MarkEntrySynced flags a replayed entry so the trailing garbage-collect
// pass can drop it.
func (s *LocalStore) MarkEntrySynced(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	if s.db == nil {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, markQueueEntrySynced, id); err != nil {
		log.Err(err).
			Str("func", "LocalStore.MarkEntrySynced").
			Int64("id", id).
			Msg("failed to mark queue entry synced")
		return fmt.Errorf("failed to mark queue entry synced (id=%d): %w", id, err)
	}

	return nil
}

// DeleteSyncedEntries drops every entry already flagged as synced.
func (s *LocalStore) DeleteSyncedEntries(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if s.db == nil {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, deleteSyncedQueueEntries); err != nil {
		log.Err(err).
			Str("func", "LocalStore.DeleteSyncedEntries").
			Msg("failed to delete synced queue entries")
		return fmt.Errorf("failed to delete synced queue entries: %w", err)
	}

	return nil
}

// PendingSyncCount returns the number of unsynced queue entries.
func (s *LocalStore) PendingSyncCount(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	if s.db == nil {
		return 0, nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx, countPendingQueueEntries).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "LocalStore.PendingSyncCount").
			Msg("failed to count pending queue entries")
		return 0, fmt.Errorf("failed to count pending queue entries: %w", err)
	}

	return count, nil
}
