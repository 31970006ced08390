// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"fmt"

	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/internal/netmon"
	"github.com/MKhiriev/nota-sync/internal/service"
	"github.com/MKhiriev/nota-sync/internal/store"
	"github.com/MKhiriev/nota-sync/internal/workers"
)

// App owns the client process lifecycle: it connects the store to the
// network monitor, installs the back-online hook, starts the background
// workers, and blocks until the context is cancelled.
type App struct {
	store    *store.LocalStore
	services *service.Services
	monitor  *netmon.Monitor
	workers  *workers.Workers
	logger   *logger.Logger
}

func NewApp(localStore *store.LocalStore, services *service.Services, monitor *netmon.Monitor, log *logger.Logger) (*App, error) {
	if localStore == nil || services == nil || monitor == nil {
		return nil, fmt.Errorf("client app requires store, services and monitor")
	}

	return &App{
		store:    localStore,
		services: services,
		monitor:  monitor,
		workers:  workers.NewWorkers(monitor, services.SyncManager),
		logger:   log,
	}, nil
}

// Run implements [Client].
func (a *App) Run(ctx context.Context) error {
	ctx = a.logger.WithContext(ctx)
	log := logger.FromContext(ctx)

	if err := a.store.MigrateLegacySnapshots(ctx); err != nil {
		return fmt.Errorf("failed to migrate legacy snapshots: %w", err)
	}

	// reads fall back to the snapshot file while offline; the monitor
	// decides what offline means
	a.store.SetStatusProvider(a.monitor)

	// coming back online drains the offline queue first, then schedules a
	// full push so the remote converges with local state
	a.monitor.SetOnOnline(func(onlineCtx context.Context) {
		if err := a.services.QueueProcessor.Process(onlineCtx); err != nil {
			log.Err(err).Str("func", "App.Run").Msg("failed to drain sync queue after reconnect")
		}
		a.services.SyncManager.TriggerAutoSync(onlineCtx)
	})

	a.workers.Run(ctx)

	log.Info().Str("func", "App.Run").Msg("client started")
	<-ctx.Done()
	log.Info().Str("func", "App.Run").Msg("client stopped")

	return nil
}
