// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/nota-sync/internal/adapter"
	"github.com/MKhiriev/nota-sync/internal/config"
	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/internal/store"
)

type Services struct {
	SyncManager      SyncManager
	QueueProcessor   QueueProcessor
	CalendarImporter CalendarImporter
}

func NewServices(localStore *store.LocalStore, remote adapter.RemoteStore, calendar adapter.CalendarClient, status store.StatusProvider, cfg config.ClientConfig, log *logger.Logger) *Services {
	syncManager := NewSyncManager(localStore, remote, cfg.Sync.Debounce, log)

	return &Services{
		SyncManager:      syncManager,
		QueueProcessor:   NewQueueProcessor(localStore, remote, syncManager, status, log),
		CalendarImporter: NewCalendarImporter(localStore, calendar, log),
	}
}
