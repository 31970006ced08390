package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a remote store base URL
//	-ws-url realtime subscription websocket base URL
//	-d sqlite database file path
//	-snapshot legacy snapshot file path
//	-c/-config json file path with configs
//	-request-timeout outbound request timeout (e.g., "15s")
//	-debounce auto-sync debounce window (e.g., "2s")
//	-probe-interval connectivity probe interval (e.g., "15s")
//	-pending-poll-interval pending-sync count poll interval (e.g., "30s")
//	-calendar-url external calendar API base URL
func ParseFlags() *StructuredConfig {
	var remoteBaseURL string
	var wsBaseURL string
	var dbPath string
	var snapshotPath string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var debounce time.Duration
	var probeInterval time.Duration
	var pendingPollInterval time.Duration
	var calendarBaseURL string

	flag.StringVar(&remoteBaseURL, "a", "", "Remote store base URL")
	flag.StringVar(&wsBaseURL, "ws-url", "", "Realtime subscription websocket base URL")
	flag.StringVar(&dbPath, "d", "", "Sqlite database file path")
	flag.StringVar(&snapshotPath, "snapshot", "", "Legacy snapshot file path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 15s, 1m)")
	flag.DurationVar(&debounce, "debounce", 0, "Auto-sync debounce window (e.g., 2s)")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe interval (e.g., 15s)")
	flag.DurationVar(&pendingPollInterval, "pending-poll-interval", 0, "Pending-sync count poll interval (e.g., 30s)")
	flag.StringVar(&calendarBaseURL, "calendar-url", "", "External calendar API base URL")

	flag.Parse()

	return &StructuredConfig{
		Remote: Remote{
			BaseURL:        remoteBaseURL,
			WSBaseURL:      wsBaseURL,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB:       DB{Path: dbPath},
			Snapshot: Snapshot{Path: snapshotPath},
		},
		Sync: Sync{
			Debounce:            debounce,
			ProbeInterval:       probeInterval,
			PendingPollInterval: pendingPollInterval,
		},
		Calendar: Calendar{
			BaseURL: calendarBaseURL,
		},
		JSONFilePath: jsonConfigPath,
	}
}
