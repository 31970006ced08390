// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package models contains the domain entities shared by every layer of
// nota-sync: the three synchronized record collections (notes, todos,
// folders), the offline sync-queue entry, the expiring cache entry, the
// persisted session, and the calendar import types.
package models

import "time"

// Note represents a single text note.
//
// ID is client-generated (UUID) and immutable once assigned, so creating a
// note never requires a server round trip. UpdatedAt is refreshed on every
// local or remote write; DeviceID identifies the installation that last
// pushed the record and plays no part in conflict resolution.
type Note struct {
	// ID is the unique client-generated identifier of the note.
	ID string `json:"id"`

	// Title is the display title of the note.
	Title string `json:"title"`

	// Content is the note body.
	Content string `json:"content"`

	// FolderID is the ID of the folder containing this note, empty for
	// notes living at the root.
	FolderID string `json:"folderId,omitempty"`

	// CreatedAt is the timestamp when the note was first created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is refreshed on every write, local or remote.
	UpdatedAt time.Time `json:"updatedAt"`

	// DeviceID is the origin-device tag stamped on push.
	DeviceID string `json:"deviceId,omitempty"`
}
