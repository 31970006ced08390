// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/nota-sync/internal/adapter"
	"github.com/MKhiriev/nota-sync/internal/app"
	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/internal/store"
	"github.com/MKhiriev/nota-sync/internal/utils"
	"github.com/MKhiriev/nota-sync/models"
)

// watchRetryDelay spaces out redial attempts after a dropped realtime
// subscription.
const watchRetryDelay = 5 * time.Second

// DataChangeSyncComplete is the lifecycle marker delivered to data-change
// subscribers after a successful push or pull.
const DataChangeSyncComplete = "sync_complete"

// syncCollections is the fixed push/pull order.
var syncCollections = []string{models.CollectionNotes, models.CollectionFolders, models.CollectionTodos}

type syncManager struct {
	store  Storage
	remote adapter.RemoteStore
	logger *logger.Logger

	debounce time.Duration
	now      func() time.Time

	mu            sync.Mutex
	baseCtx       context.Context
	session       models.Session
	debounceTimer *time.Timer
	watchCancel   context.CancelFunc
	nextSubID     int64
	authSubs      map[int64]func(models.Session)
	dataSubs      map[int64]func(models.DataChange)
}

func NewSyncManager(localStore Storage, remote adapter.RemoteStore, debounce time.Duration, log *logger.Logger) SyncManager {
	return &syncManager{
		store:    localStore,
		remote:   remote,
		logger:   log,
		debounce: debounce,
		now:      time.Now,
		baseCtx:  context.Background(),
		authSubs: make(map[int64]func(models.Session)),
		dataSubs: make(map[int64]func(models.DataChange)),
	}
}

// Run implements [SyncManager] and workers.Worker. It restores a
// persisted session and starts realtime subscriptions when sync is
// already enabled for an authenticated user.
func (m *syncManager) Run(ctx context.Context) {
	log := logger.FromContext(ctx)

	m.mu.Lock()
	m.baseCtx = ctx
	m.mu.Unlock()

	session := m.restoreSession()
	if !session.Authenticated() {
		return
	}

	log.Info().
		Str("func", "syncManager.Run").
		Str("email", session.Email).
		Msg("restored persisted session")

	m.notifyAuth(session)

	if m.IsSyncEnabled() {
		m.startWatches(session.UserID)
	}
}

func (m *syncManager) restoreSession() models.Session {
	userID, _ := m.store.Setting(store.SettingAuthUserID)
	if userID == "" {
		return models.Session{}
	}
	email, _ := m.store.Setting(store.SettingAuthUserEmail)
	token, _ := m.store.Setting(store.SettingAuthIDToken)

	// a stale token is the same as no session
	if token != "" && adapter.SessionExpired(token, m.now()) {
		m.clearPersistedSession()
		return models.Session{}
	}

	session := models.Session{UserID: userID, Email: email, IDToken: token}

	m.mu.Lock()
	m.session = session
	m.mu.Unlock()

	if token != "" {
		m.remote.SetToken(token)
	}
	return session
}

// Session implements [SessionSource].
func (m *syncManager) Session() models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// SignUp implements [SyncManager].
func (m *syncManager) SignUp(ctx context.Context, email, password string) models.AuthResult {
	log := logger.FromContext(ctx)

	session, err := m.remote.SignUp(ctx, email, password)
	if err != nil {
		log.Err(err).
			Str("func", "syncManager.SignUp").
			Str("email", email).
			Msg("sign-up rejected")
		return models.AuthResult{Success: false, Error: authMessage(err)}
	}

	m.establishSession(session)

	if m.IsSyncEnabled() {
		m.startWatches(session.UserID)
	}

	return models.AuthResult{Success: true}
}

// SignIn implements [SyncManager]. A successful sign-in with sync enabled
// pulls the remote state so this device converges with the others.
func (m *syncManager) SignIn(ctx context.Context, email, password string) models.AuthResult {
	log := logger.FromContext(ctx)

	session, err := m.remote.SignIn(ctx, email, password)
	if err != nil {
		log.Err(err).
			Str("func", "syncManager.SignIn").
			Str("email", email).
			Msg("sign-in rejected")
		return models.AuthResult{Success: false, Error: authMessage(err)}
	}

	m.establishSession(session)

	if m.IsSyncEnabled() {
		if result := m.PullAllData(ctx); !result.Success {
			log.Warn().
				Str("func", "syncManager.SignIn").
				Str("error", result.Error).
				Msg("initial pull after sign-in failed")
		}
		m.startWatches(session.UserID)
	}

	return models.AuthResult{Success: true}
}

func (m *syncManager) establishSession(session models.Session) {
	m.mu.Lock()
	m.session = session
	m.mu.Unlock()

	m.persistSession(session)
	m.notifyAuth(session)
}

func (m *syncManager) persistSession(session models.Session) {
	if err := m.store.SetSetting(store.SettingAuthUserID, session.UserID); err != nil {
		m.logger.Err(err).Str("func", "syncManager.persistSession").Msg("failed to persist user id")
	}
	if err := m.store.SetSetting(store.SettingAuthUserEmail, session.Email); err != nil {
		m.logger.Err(err).Str("func", "syncManager.persistSession").Msg("failed to persist email")
	}
	if err := m.store.SetSetting(store.SettingAuthIDToken, session.IDToken); err != nil {
		m.logger.Err(err).Str("func", "syncManager.persistSession").Msg("failed to persist token")
	}
}

// SignOut implements [SyncManager].
func (m *syncManager) SignOut(ctx context.Context) error {
	log := logger.FromContext(ctx)

	m.stopWatches()
	m.cancelPendingAutoSync()

	m.mu.Lock()
	m.session = models.Session{}
	m.mu.Unlock()

	m.remote.SetToken("")
	m.clearPersistedSession()

	// sync is per account; the next user opts in again
	if err := m.store.SetSetting(store.SettingSyncEnabled, "false"); err != nil {
		return fmt.Errorf("failed to disable sync on sign-out: %w", err)
	}

	log.Info().Str("func", "syncManager.SignOut").Msg("signed out")
	m.notifyAuth(models.Session{})
	return nil
}

func (m *syncManager) clearPersistedSession() {
	for _, key := range []string{store.SettingAuthUserID, store.SettingAuthUserEmail, store.SettingAuthIDToken} {
		if err := m.store.DeleteSetting(key); err != nil {
			m.logger.Err(err).Str("func", "syncManager.clearPersistedSession").Msg("failed to clear persisted session")
		}
	}
}

// IsSyncEnabled implements [SessionSource].
func (m *syncManager) IsSyncEnabled() bool {
	value, _ := m.store.Setting(store.SettingSyncEnabled)
	return value == "true"
}

// SetSyncEnabled implements [SyncManager].
func (m *syncManager) SetSyncEnabled(ctx context.Context, enabled bool) error {
	if err := m.store.SetSetting(store.SettingSyncEnabled, formatBool(enabled)); err != nil {
		return fmt.Errorf("failed to persist sync switch: %w", err)
	}

	session := m.Session()
	if enabled && session.Authenticated() {
		m.startWatches(session.UserID)
		m.TriggerAutoSync(ctx)
		return nil
	}

	m.stopWatches()
	m.cancelPendingAutoSync()
	return nil
}

// IsAutoSyncEnabled implements [SyncManager]. Absent means on: auto-sync
// is the default behavior, the setting only records an explicit opt-out.
func (m *syncManager) IsAutoSyncEnabled() bool {
	value, ok := m.store.Setting(store.SettingAutoSync)
	if !ok {
		return true
	}
	return value == "true"
}

// SetAutoSyncEnabled implements [SyncManager].
func (m *syncManager) SetAutoSyncEnabled(enabled bool) error {
	if err := m.store.SetSetting(store.SettingAutoSync, formatBool(enabled)); err != nil {
		return fmt.Errorf("failed to persist auto-sync switch: %w", err)
	}
	if !enabled {
		m.cancelPendingAutoSync()
	}
	return nil
}

// LastSyncTime implements [SyncManager].
func (m *syncManager) LastSyncTime() (time.Time, bool) {
	value, ok := m.store.Setting(store.SettingLastSync)
	if !ok {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// DeviceID implements [SyncManager].
func (m *syncManager) DeviceID() string {
	if id, ok := m.store.Setting(store.SettingDeviceID); ok && id != "" {
		return id
	}

	id := utils.NewDeviceID(m.now())
	if err := m.store.SetSetting(store.SettingDeviceID, id); err != nil {
		m.logger.Err(err).Str("func", "syncManager.DeviceID").Msg("failed to persist device id")
	}
	return id
}

// TriggerAutoSync implements [SyncManager]. Each call restarts the
// debounce timer, so a burst of edits produces exactly one push.
func (m *syncManager) TriggerAutoSync(ctx context.Context) {
	if !m.IsSyncEnabled() || !m.IsAutoSyncEnabled() || !m.Session().Authenticated() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	base := m.baseCtx
	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
	}
	m.debounceTimer = time.AfterFunc(m.debounce, func() {
		m.SyncAllData(base)
	})
}

func (m *syncManager) cancelPendingAutoSync() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
		m.debounceTimer = nil
	}
}

// SyncAllData implements [SyncManager]. Collections are pushed serially
// in a fixed order; the first failure aborts the push and surfaces the
// generic sync failure message.
func (m *syncManager) SyncAllData(ctx context.Context) models.SyncResult {
	log := logger.FromContext(ctx)

	session := m.Session()
	if !session.Authenticated() {
		return models.SyncResult{Success: false, Error: app.MsgNotAuthenticated}
	}

	deviceID := m.DeviceID()
	now := m.now()

	for _, collection := range syncCollections {
		records, err := m.store.CollectionJSON(ctx, collection)
		if err != nil {
			log.Err(err).
				Str("func", "syncManager.SyncAllData").
				Str("collection", collection).
				Msg("failed to load collection for push")
			return models.SyncResult{Success: false, Error: app.MsgSyncFailed}
		}

		stamped, err := stampRecords(records, deviceID, now)
		if err != nil {
			log.Err(err).
				Str("func", "syncManager.SyncAllData").
				Str("collection", collection).
				Msg("failed to stamp records for push")
			return models.SyncResult{Success: false, Error: app.MsgSyncFailed}
		}

		if err = m.remote.PushCollection(ctx, session.UserID, collection, stamped); err != nil {
			log.Err(err).
				Str("func", "syncManager.SyncAllData").
				Str("collection", collection).
				Msg("failed to push collection")
			return models.SyncResult{Success: false, Error: app.MsgSyncFailed}
		}
	}

	m.recordSyncComplete(ctx)
	return models.SyncResult{Success: true}
}

// PullAllData implements [SyncManager]. Remote contents win wholesale;
// whatever this device had locally for a collection is replaced.
func (m *syncManager) PullAllData(ctx context.Context) models.SyncResult {
	log := logger.FromContext(ctx)

	session := m.Session()
	if !session.Authenticated() {
		return models.SyncResult{Success: false, Error: app.MsgNotAuthenticated}
	}

	for _, collection := range syncCollections {
		records, err := m.remote.PullCollection(ctx, session.UserID, collection)
		if err != nil {
			log.Err(err).
				Str("func", "syncManager.PullAllData").
				Str("collection", collection).
				Msg("failed to pull collection")
			return models.SyncResult{Success: false, Error: app.MsgPullFailed}
		}

		if err = m.store.ReplaceCollection(ctx, collection, records); err != nil {
			log.Err(err).
				Str("func", "syncManager.PullAllData").
				Str("collection", collection).
				Msg("failed to apply pulled collection")
			return models.SyncResult{Success: false, Error: app.MsgPullFailed}
		}

		m.notifyData(models.DataChange{Collection: collection, Records: records})
	}

	m.recordSyncComplete(ctx)
	return models.SyncResult{Success: true}
}

func (m *syncManager) recordSyncComplete(ctx context.Context) {
	log := logger.FromContext(ctx)

	if err := m.store.SetSetting(store.SettingLastSync, m.now().Format(time.RFC3339Nano)); err != nil {
		log.Err(err).Str("func", "syncManager.recordSyncComplete").Msg("failed to persist last sync time")
	}
	m.notifyData(models.DataChange{Collection: DataChangeSyncComplete})
}

// DeleteRemote implements [SyncManager].
func (m *syncManager) DeleteRemote(ctx context.Context, entity models.Entity, id string) error {
	session := m.Session()
	if !session.Authenticated() {
		return ErrNotAuthenticated
	}
	if !m.IsSyncEnabled() {
		return ErrSyncDisabled
	}

	if err := m.remote.DeleteRecord(ctx, session.UserID, entity.Collection(), id); err != nil {
		return fmt.Errorf("failed to delete remote %s (id=%s): %w", entity, id, err)
	}
	return nil
}

// OnAuthChange implements [SyncManager].
func (m *syncManager) OnAuthChange(fn func(models.Session)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.authSubs[id] = fn
	current := m.session
	m.mu.Unlock()

	fn(current)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.authSubs, id)
	}
}

// OnDataChange implements [SyncManager].
func (m *syncManager) OnDataChange(fn func(models.DataChange)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	m.dataSubs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.dataSubs, id)
	}
}

func (m *syncManager) notifyAuth(session models.Session) {
	m.mu.Lock()
	subs := make([]func(models.Session), 0, len(m.authSubs))
	for _, fn := range m.authSubs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}

func (m *syncManager) notifyData(change models.DataChange) {
	m.mu.Lock()
	subs := make([]func(models.DataChange), 0, len(m.dataSubs))
	for _, fn := range m.dataSubs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}

// startWatches opens one realtime subscription per collection. Any
// previous watch set is cancelled first so toggling sync or re-signing-in
// never leaks subscriptions.
func (m *syncManager) startWatches(uid string) {
	m.mu.Lock()
	if m.watchCancel != nil {
		m.watchCancel()
	}
	watchCtx, cancel := context.WithCancel(m.baseCtx)
	m.watchCancel = cancel
	m.mu.Unlock()

	for _, collection := range syncCollections {
		go m.watchLoop(watchCtx, uid, collection)
	}
}

func (m *syncManager) stopWatches() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
}

func (m *syncManager) watchLoop(ctx context.Context, uid, collection string) {
	for {
		err := m.remote.Watch(ctx, uid, collection, func(records json.RawMessage) {
			m.applyRemoteUpdate(ctx, collection, records)
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			m.logger.Err(err).
				Str("func", "syncManager.watchLoop").
				Str("collection", collection).
				Msg("realtime subscription dropped, redialing")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(watchRetryDelay):
		}
	}
}

func (m *syncManager) applyRemoteUpdate(ctx context.Context, collection string, records json.RawMessage) {
	if err := m.store.ReplaceCollection(ctx, collection, records); err != nil {
		m.logger.Err(err).
			Str("func", "syncManager.applyRemoteUpdate").
			Str("collection", collection).
			Msg("failed to apply realtime update")
		return
	}

	m.notifyData(models.DataChange{Collection: collection, Records: records})
}

// stampRecords rewrites updatedAt and deviceId on every record in the
// JSON array so the remote can attribute the push.
func stampRecords(records json.RawMessage, deviceID string, now time.Time) (json.RawMessage, error) {
	var items []map[string]any
	if err := json.Unmarshal(records, &items); err != nil {
		return nil, fmt.Errorf("failed to decode records for stamping: %w", err)
	}

	stamp := now.UTC().Format(time.RFC3339Nano)
	for _, item := range items {
		item["updatedAt"] = stamp
		item["deviceId"] = deviceID
	}

	return json.Marshal(items)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
