package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/models"
)

// SetCache stores an arbitrary JSON value under the key. A nil expiresAt
// means the entry never expires. In degraded mode caching is a no-op.
func (s *LocalStore) SetCache(ctx context.Context, key string, data json.RawMessage, expiresAt *time.Time) error {
	log := logger.FromContext(ctx)

	if s.db == nil {
		return nil
	}

	var expiry sql.NullTime
	if expiresAt != nil {
		expiry = sql.NullTime{Time: *expiresAt, Valid: true}
	}

	if _, err := s.db.ExecContext(ctx, upsertCacheEntry, key, string(data), s.now(), expiry); err != nil {
		log.Err(err).
			Str("func", "LocalStore.SetCache").
			Str("key", key).
			Msg("failed to upsert cache entry")
		return fmt.Errorf("failed to set cache entry (key=%s): %w", key, err)
	}

	return nil
}

// GetCache returns the cached value for the key, or ErrCacheMiss when the
// entry is absent or expired. An expired entry is deleted on read.
func (s *LocalStore) GetCache(ctx context.Context, key string) (json.RawMessage, error) {
	log := logger.FromContext(ctx)

	if s.db == nil {
		return nil, ErrCacheMiss
	}

	var entry models.CacheEntry
	var data string
	var expiry sql.NullTime

	row := s.db.QueryRowContext(ctx, getCacheEntry, key)
	err := row.Scan(&entry.Key, &data, &entry.Timestamp, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		log.Err(err).
			Str("func", "LocalStore.GetCache").
			Str("key", key).
			Msg("failed to scan cache entry row")
		return nil, fmt.Errorf("failed to scan cache entry row: %w", err)
	}

	entry.Data = json.RawMessage(data)
	if expiry.Valid {
		expiresAt := expiry.Time
		entry.ExpiresAt = &expiresAt
	}

	if entry.Expired(s.now()) {
		if delErr := s.DeleteCache(ctx, key); delErr != nil {
			log.Err(delErr).
				Str("func", "LocalStore.GetCache").
				Str("key", key).
				Msg("failed to evict expired cache entry")
		}
		return nil, ErrCacheMiss
	}

	return entry.Data, nil
}

// DeleteCache removes a single cache entry.
func (s *LocalStore) DeleteCache(ctx context.Context, key string) error {
	log := logger.FromContext(ctx)

	if s.db == nil {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, deleteCacheEntry, key); err != nil {
		log.Err(err).
			Str("func", "LocalStore.DeleteCache").
			Str("key", key).
			Msg("failed to delete cache entry")
		return fmt.Errorf("failed to delete cache entry (key=%s): %w", key, err)
	}

	return nil
}

// ClearCache removes every cache entry.
func (s *LocalStore) ClearCache(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if s.db == nil {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, clearCacheEntries); err != nil {
		log.Err(err).
			Str("func", "LocalStore.ClearCache").
			Msg("failed to clear cache")
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	return nil
}
