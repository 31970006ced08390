package models

import (
	"encoding/json"
	"time"
)

// CacheEntry is a generic expiring key-value cache record. An entry read
// past ExpiresAt is deleted and reported as absent.
type CacheEntry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`

	// ExpiresAt is nil for entries that never expire.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the entry has passed its expiry at the given time.
func (c CacheEntry) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
