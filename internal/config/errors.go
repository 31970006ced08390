package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidRemoteConfigs indicates invalid remote endpoint settings
	// (for example, missing base URL).
	ErrInvalidRemoteConfigs = errors.New("invalid remote configuration")
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, empty database path or unsupported in-memory path).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidSyncConfigs indicates invalid synchronization timing
	// settings (for example, a non-positive debounce window).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
)
