// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service implements the client's sync business logic on top of
// the local store and the remote-store adapter: session management,
// whole-collection push/pull with debounced auto-sync, realtime
// subscription handling, sync-queue replay, and calendar import.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/nota-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// Storage is the slice of the local store the services depend on.
// Satisfied by *store.LocalStore.
type Storage interface {
	Setting(key string) (string, bool)
	SetSetting(key, value string) error
	DeleteSetting(key string) error

	CollectionJSON(ctx context.Context, collection string) (json.RawMessage, error)
	ReplaceCollection(ctx context.Context, collection string, records json.RawMessage) error

	PendingEntries(ctx context.Context) ([]models.SyncQueueEntry, error)
	MarkEntrySynced(ctx context.Context, id int64) error
	DeleteSyncedEntries(ctx context.Context) error

	GetAllTodos(ctx context.Context) ([]models.TodoItem, error)
	SaveTodo(ctx context.Context, todo models.TodoItem) (models.TodoItem, error)
}

// SessionSource exposes the current session state to collaborators that
// must not mutate it. Satisfied by [SyncManager].
type SessionSource interface {
	// Session returns the current session; the zero value means signed
	// out.
	Session() models.Session

	// IsSyncEnabled reports whether remote sync is switched on.
	IsSyncEnabled() bool

	// DeviceID returns the stable per-installation identifier, creating
	// and persisting it on first use.
	DeviceID() string
}

// SyncManager owns the remote-sync session and the push/pull machinery.
type SyncManager interface {
	SessionSource

	// Run restores a persisted session and, when sync is enabled for an
	// authenticated user, starts the realtime subscriptions. The context
	// bounds every background goroutine the manager spawns.
	Run(ctx context.Context)

	// SignUp registers a new account. Failures come back classified as a
	// user-facing message in the result, never as an error.
	SignUp(ctx context.Context, email, password string) models.AuthResult

	// SignIn authenticates, persists the session, and, when sync is
	// enabled, pulls the remote state and starts subscriptions.
	SignIn(ctx context.Context, email, password string) models.AuthResult

	// SignOut stops subscriptions, clears the persisted session, and
	// notifies auth subscribers with the signed-out session.
	SignOut(ctx context.Context) error

	// SetSyncEnabled flips the sync master switch. Enabling with an
	// authenticated session starts subscriptions and schedules a sync;
	// disabling stops them.
	SetSyncEnabled(ctx context.Context, enabled bool) error

	// IsAutoSyncEnabled reports the auto-sync preference; on by default.
	IsAutoSyncEnabled() bool

	// SetAutoSyncEnabled persists the auto-sync preference.
	SetAutoSyncEnabled(enabled bool) error

	// LastSyncTime returns the completion time of the last successful
	// push or pull, if any.
	LastSyncTime() (time.Time, bool)

	// TriggerAutoSync schedules a debounced push. Consecutive calls
	// within the debounce window collapse into a single sync.
	TriggerAutoSync(ctx context.Context)

	// SyncAllData pushes all three collections wholesale to the remote,
	// stamping each record with a fresh update time and the device ID.
	SyncAllData(ctx context.Context) models.SyncResult

	// PullAllData overwrites the local collections with the remote
	// contents wholesale.
	PullAllData(ctx context.Context) models.SyncResult

	// DeleteRemote removes one record from the remote collection.
	// Callers invoke it after a local delete while online; offline
	// deletes travel through the sync queue instead.
	DeleteRemote(ctx context.Context, entity models.Entity, id string) error

	// OnAuthChange subscribes to session changes. The handler is invoked
	// immediately with the current session, then on every change. The
	// returned closure removes the subscription.
	OnAuthChange(fn func(models.Session)) func()

	// OnDataChange subscribes to data-change notifications: realtime
	// collection updates, pull overwrites, and sync_complete markers.
	// The returned closure removes the subscription.
	OnDataChange(fn func(models.DataChange)) func()
}

// QueueProcessor drains the offline sync queue against the remote store.
type QueueProcessor interface {
	// Process replays pending queue entries in order, marks successes,
	// and garbage-collects replayed entries. Reentrant calls while a
	// drain is running are no-ops, as are calls while offline.
	Process(ctx context.Context) error
}

// CalendarImporter reconciles external calendar events into local tasks.
type CalendarImporter interface {
	// Connect stores the provider access token and its expiry and
	// enables the integration.
	Connect(token string, expiry time.Time) error

	// Disconnect discards the stored token and disables the integration.
	Disconnect() error

	// IsEnabled reports whether the integration is switched on.
	IsEnabled() bool

	// ListCalendars returns the calendars visible to the stored token, for
	// the caller to choose import sources from.
	ListCalendars(ctx context.Context) ([]models.Calendar, error)

	// ImportEventsAsTasks fetches upcoming events from the given
	// calendars and inserts them as tasks, deduplicating by external
	// event ID. Per-calendar failures shrink the result, they do not
	// abort the batch.
	ImportEventsAsTasks(ctx context.Context, calendarIDs []string) (models.ImportResult, error)
}
