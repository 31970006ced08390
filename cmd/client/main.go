package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/nota-sync/internal/adapter"
	"github.com/MKhiriev/nota-sync/internal/client"
	"github.com/MKhiriev/nota-sync/internal/config"
	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/internal/netmon"
	"github.com/MKhiriev/nota-sync/internal/service"
	"github.com/MKhiriev/nota-sync/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("nota-sync-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snapshots, err := store.NewSnapshotFile(cfg.Storage.Snapshot.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("open snapshot file")
	}

	// a broken local database is not fatal: the store degrades to
	// snapshot-only reads and the queue goes quiet
	db, err := store.NewConnectSQLite(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Warn().Err(err).Msg("local database unavailable, running degraded")
		db = nil
	} else if err = db.Migrate(); err != nil {
		log.Warn().Err(err).Msg("local database migration failed, running degraded")
		db = nil
	}

	localStore := store.NewLocalStore(db, snapshots, log)

	remote, err := adapter.NewHTTPRemoteStore(cfg.Remote, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create remote store adapter")
	}

	calendar, err := adapter.NewHTTPCalendarClient(cfg.Calendar, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create calendar client")
	}

	monitor := netmon.NewMonitor(remote, localStore, cfg.Sync, log)
	services := service.NewServices(localStore, remote, calendar, monitor, *cfg, log)

	app, err := client.NewApp(localStore, services, monitor, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
