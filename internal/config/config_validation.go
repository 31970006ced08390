// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

// validate checks that the final [ClientConfig] satisfies all application
// invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *ClientConfig) validate() error {
	if cfg.Remote.BaseURL == "" {
		return ErrInvalidRemoteConfigs
	}

	if cfg.Storage.DB.Path == "" || strings.Contains(cfg.Storage.DB.Path, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Sync.Debounce <= 0 || cfg.Sync.ProbeInterval <= 0 || cfg.Sync.PendingPollInterval <= 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}
