// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/nota-sync/internal/adapter"
	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/internal/store"
	"github.com/MKhiriev/nota-sync/models"
)

type queueProcessor struct {
	store   Storage
	remote  adapter.RemoteStore
	session SessionSource
	status  store.StatusProvider
	logger  *logger.Logger

	now     func() time.Time
	running atomic.Bool
}

func NewQueueProcessor(localStore Storage, remote adapter.RemoteStore, session SessionSource, status store.StatusProvider, log *logger.Logger) QueueProcessor {
	return &queueProcessor{
		store:   localStore,
		remote:  remote,
		session: session,
		status:  status,
		logger:  log,
		now:     time.Now,
	}
}

// Process implements [QueueProcessor]. Entries replay in insertion order;
// an entry that fails stays pending for the next drain while later
// entries still get their chance. Replayed entries are flagged and then
// collected in one trailing pass.
func (p *queueProcessor) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if !p.running.CompareAndSwap(false, true) {
		return nil
	}
	defer p.running.Store(false)

	// entries replayed against an unreachable remote would all fail and
	// stay pending anyway; wait for the monitor to call back
	if p.status == nil || !p.status.IsOnline() {
		return nil
	}

	session := p.session.Session()
	if !session.Authenticated() || !p.session.IsSyncEnabled() {
		return nil
	}

	entries, err := p.store.PendingEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending queue entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	log.Debug().
		Str("func", "queueProcessor.Process").
		Int("entries", len(entries)).
		Msg("draining sync queue")

	var replayed int
	for _, entry := range entries {
		if err = p.replay(ctx, session.UserID, entry); err != nil {
			log.Err(err).
				Str("func", "queueProcessor.Process").
				Int64("id", entry.ID).
				Str("entity_id", entry.EntityID).
				Msg("failed to replay queue entry, leaving pending")
			continue
		}

		if err = p.store.MarkEntrySynced(ctx, entry.ID); err != nil {
			log.Err(err).
				Str("func", "queueProcessor.Process").
				Int64("id", entry.ID).
				Msg("failed to mark queue entry synced")
			continue
		}
		replayed++
	}

	if replayed > 0 {
		if err = p.store.DeleteSyncedEntries(ctx); err != nil {
			return fmt.Errorf("failed to collect replayed queue entries: %w", err)
		}
	}

	log.Info().
		Str("func", "queueProcessor.Process").
		Int("replayed", replayed).
		Int("pending", len(entries)-replayed).
		Msg("sync queue drain finished")

	return nil
}

func (p *queueProcessor) replay(ctx context.Context, uid string, entry models.SyncQueueEntry) error {
	collection := entry.Entity.Collection()
	if collection == "" {
		return fmt.Errorf("unknown entity %q in queue entry", entry.Entity)
	}

	switch entry.Operation {
	case models.OperationCreate, models.OperationUpdate:
		record, err := stampRecord(entry.Payload, p.session.DeviceID(), p.now())
		if err != nil {
			return err
		}
		return p.remote.PutRecord(ctx, uid, collection, entry.EntityID, record)
	case models.OperationDelete:
		return p.remote.DeleteRecord(ctx, uid, collection, entry.EntityID)
	default:
		return fmt.Errorf("unknown operation %q in queue entry", entry.Operation)
	}
}

// stampRecord rewrites updatedAt and deviceId on a single queued record so
// the remote attributes the replay to this device, same as a live push.
func stampRecord(record json.RawMessage, deviceID string, now time.Time) (json.RawMessage, error) {
	var item map[string]any
	if err := json.Unmarshal(record, &item); err != nil {
		return nil, fmt.Errorf("failed to decode queued record for stamping: %w", err)
	}

	item["updatedAt"] = now.UTC().Format(time.RFC3339Nano)
	item["deviceId"] = deviceID
	return json.Marshal(item)
}
