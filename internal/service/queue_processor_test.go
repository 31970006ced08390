// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/internal/mock"
	"github.com/MKhiriev/nota-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// stubSession — fixed SessionSource, avoids dragging the full sync
// manager into queue tests.
type stubSession struct {
	session     models.Session
	syncEnabled bool
	deviceID    string
}

func (s *stubSession) Session() models.Session { return s.session }
func (s *stubSession) IsSyncEnabled() bool     { return s.syncEnabled }
func (s *stubSession) DeviceID() string        { return s.deviceID }

// stubStatus — fixed connectivity state.
type stubStatus struct {
	online bool
}

func (s *stubStatus) IsOnline() bool { return s.online }

func newTestProcessor(t *testing.T, ctrl *gomock.Controller) (*queueProcessor, *stubStorage, *mock.MockRemoteStore, *stubSession) {
	t.Helper()

	storage := newStubStorage()
	remote := mock.NewMockRemoteStore(ctrl)
	session := &stubSession{session: models.Session{UserID: "uid-1"}, syncEnabled: true, deviceID: "device_test"}

	p := NewQueueProcessor(storage, remote, session, &stubStatus{online: true}, logger.Nop()).(*queueProcessor)
	p.now = func() time.Time { return managerNow }
	return p, storage, remote, session
}

func TestQueueProcessor_Process_ReplaysEntriesInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, storage, remote, _ := newTestProcessor(t, ctrl)
	ctx := context.Background()

	notePayload := json.RawMessage(`{"id":"n1","title":"offline note"}`)
	folderPayload := json.RawMessage(`{"id":"f3","name":"offline folder"}`)
	storage.entries = []models.SyncQueueEntry{
		{ID: 1, Operation: models.OperationCreate, Entity: models.EntityNote, EntityID: "n1", Payload: notePayload},
		{ID: 2, Operation: models.OperationDelete, Entity: models.EntityTodo, EntityID: "t2"},
		{ID: 3, Operation: models.OperationUpdate, Entity: models.EntityFolder, EntityID: "f3", Payload: folderPayload},
	}

	wantStamp := managerNow.UTC().Format(time.RFC3339Nano)
	assertStamped := func(wantID string) func(context.Context, string, string, string, json.RawMessage) error {
		return func(_ context.Context, _, _, _ string, record json.RawMessage) error {
			var item map[string]any
			require.NoError(t, json.Unmarshal(record, &item))
			assert.Equal(t, wantID, item["id"])
			assert.Equal(t, wantStamp, item["updatedAt"])
			assert.Equal(t, "device_test", item["deviceId"])
			return nil
		}
	}

	gomock.InOrder(
		remote.EXPECT().PutRecord(ctx, "uid-1", models.CollectionNotes, "n1", gomock.Any()).DoAndReturn(assertStamped("n1")),
		remote.EXPECT().DeleteRecord(ctx, "uid-1", models.CollectionTodos, "t2").Return(nil),
		remote.EXPECT().PutRecord(ctx, "uid-1", models.CollectionFolders, "f3", gomock.Any()).DoAndReturn(assertStamped("f3")),
	)

	require.NoError(t, p.Process(ctx))

	assert.Empty(t, storage.entries)
	assert.Equal(t, 1, storage.gcRuns)
}

func TestQueueProcessor_Process_FailedEntryStaysPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, storage, remote, _ := newTestProcessor(t, ctrl)
	ctx := context.Background()

	storage.entries = []models.SyncQueueEntry{
		{ID: 1, Operation: models.OperationCreate, Entity: models.EntityNote, EntityID: "n1", Payload: json.RawMessage(`{"id":"n1"}`)},
		{ID: 2, Operation: models.OperationDelete, Entity: models.EntityNote, EntityID: "n2"},
	}

	remote.EXPECT().PutRecord(ctx, "uid-1", models.CollectionNotes, "n1", gomock.Any()).Return(errors.New("server error"))
	remote.EXPECT().DeleteRecord(ctx, "uid-1", models.CollectionNotes, "n2").Return(nil)

	// a failed entry is not an error for the drain as a whole
	require.NoError(t, p.Process(ctx))

	require.Len(t, storage.entries, 1)
	assert.Equal(t, int64(1), storage.entries[0].ID)
	assert.False(t, storage.entries[0].Synced)
}

func TestQueueProcessor_Process_SkipsWhenOffline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, storage, _, _ := newTestProcessor(t, ctrl)
	p.status = &stubStatus{online: false}

	storage.entries = []models.SyncQueueEntry{
		{ID: 1, Operation: models.OperationDelete, Entity: models.EntityNote, EntityID: "n1"},
	}

	// no remote expectations: an offline drain must not touch the wire
	require.NoError(t, p.Process(context.Background()))
	assert.Len(t, storage.entries, 1)
}

func TestQueueProcessor_Process_SkipsWhenSignedOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, storage, _, session := newTestProcessor(t, ctrl)
	session.session = models.Session{}

	storage.entries = []models.SyncQueueEntry{
		{ID: 1, Operation: models.OperationDelete, Entity: models.EntityNote, EntityID: "n1"},
	}

	require.NoError(t, p.Process(context.Background()))
	assert.Len(t, storage.entries, 1)
}

func TestQueueProcessor_Process_SkipsWhenSyncDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, storage, _, session := newTestProcessor(t, ctrl)
	session.syncEnabled = false

	storage.entries = []models.SyncQueueEntry{
		{ID: 1, Operation: models.OperationDelete, Entity: models.EntityNote, EntityID: "n1"},
	}

	require.NoError(t, p.Process(context.Background()))
	assert.Len(t, storage.entries, 1)
}

func TestQueueProcessor_Process_EmptyQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, storage, _, _ := newTestProcessor(t, ctrl)

	require.NoError(t, p.Process(context.Background()))
	assert.Zero(t, storage.gcRuns)
}

func TestQueueProcessor_Process_ReentrantCallIsNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, storage, remote, _ := newTestProcessor(t, ctrl)
	ctx := context.Background()

	storage.entries = []models.SyncQueueEntry{
		{ID: 1, Operation: models.OperationDelete, Entity: models.EntityNote, EntityID: "n1"},
	}

	release := make(chan struct{})
	remote.EXPECT().DeleteRecord(ctx, "uid-1", models.CollectionNotes, "n1").DoAndReturn(
		func(context.Context, string, string, string) error {
			<-release
			return nil
		},
	).Times(1)

	done := make(chan error, 1)
	go func() { done <- p.Process(ctx) }()

	require.Eventually(t, func() bool { return p.running.Load() }, 2*time.Second, time.Millisecond)

	// second drain while the first is mid-flight: single replay, no error
	require.NoError(t, p.Process(ctx))

	close(release)
	require.NoError(t, <-done)
	assert.Empty(t, storage.entries)
}

func TestQueueProcessor_Replay_UnknownEntityAndOperation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, _, _, _ := newTestProcessor(t, ctrl)
	ctx := context.Background()

	err := p.replay(ctx, "uid-1", models.SyncQueueEntry{Entity: "contact", EntityID: "c1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity")

	err = p.replay(ctx, "uid-1", models.SyncQueueEntry{Operation: "archive", Entity: models.EntityNote, EntityID: "n1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation")
}
