// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	upsertNote = `
		INSERT INTO notes (
			id,
			title,
			content,
			folder_id,
			created_at,
			updated_at,
			device_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title      = excluded.title,
			content    = excluded.content,
			folder_id  = excluded.folder_id,
			updated_at = excluded.updated_at,
			device_id  = excluded.device_id;`

	getNote = `
		SELECT
			id,
			title,
			content,
			folder_id,
			created_at,
			updated_at,
			device_id
		FROM notes
		WHERE id = $1;`

	getAllNotes = `
		SELECT
			id,
			title,
			content,
			folder_id,
			created_at,
			updated_at,
			device_id
		FROM notes
		ORDER BY updated_at DESC;`

	deleteNote = `
		DELETE FROM notes
		WHERE id = $1;`

	upsertTodo = `
		INSERT INTO todos (
			id,
			text,
			completed,
			description,
			location,
			due_date,
			folder_id,
			gcal_event_id,
			created_at,
			updated_at,
			device_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			text          = excluded.text,
			completed     = excluded.completed,
			description   = excluded.description,
			location      = excluded.location,
			due_date      = excluded.due_date,
			folder_id     = excluded.folder_id,
			gcal_event_id = excluded.gcal_event_id,
			updated_at    = excluded.updated_at,
			device_id     = excluded.device_id;`

	getTodo = `
		SELECT
			id,
			text,
			completed,
			description,
			location,
			due_date,
			folder_id,
			gcal_event_id,
			created_at,
			updated_at,
			device_id
		FROM todos
		WHERE id = $1;`

	getAllTodos = `
		SELECT
			id,
			text,
			completed,
			description,
			location,
			due_date,
			folder_id,
			gcal_event_id,
			created_at,
			updated_at,
			device_id
		FROM todos
		ORDER BY created_at;`

	deleteTodo = `
		DELETE FROM todos
		WHERE id = $1;`

	upsertFolder = `
		INSERT INTO folders (
			id,
			name,
			parent_id,
			created_at,
			updated_at,
			device_id
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name       = excluded.name,
			parent_id  = excluded.parent_id,
			updated_at = excluded.updated_at,
			device_id  = excluded.device_id;`

	getFolder = `
		SELECT
			id,
			name,
			parent_id,
			created_at,
			updated_at,
			device_id
		FROM folders
		WHERE id = $1;`

	getAllFolders = `
		SELECT
			id,
			name,
			parent_id,
			created_at,
			updated_at,
			device_id
		FROM folders
		ORDER BY name;`

	deleteFolder = `
		DELETE FROM folders
		WHERE id = $1;`

	countRecord = `
		SELECT COUNT(1) FROM %s WHERE id = $1;`

	clearNotes = `
		DELETE FROM notes;`

	clearTodos = `
		DELETE FROM todos;`

	clearFolders = `
		DELETE FROM folders;`

	insertQueueEntry = `
		INSERT INTO sync_queue (
			op_type,
			entity,
			entity_id,
			payload,
			created_at,
			synced
		) VALUES ($1, $2, $3, $4, $5, FALSE);`

	getPendingQueueEntries = `
		SELECT
			id,
			op_type,
			entity,
			entity_id,
			payload,
			created_at,
			synced
		FROM sync_queue
		WHERE synced = FALSE
		ORDER BY id;`

	markQueueEntrySynced = `
		UPDATE sync_queue
		SET synced = TRUE
		WHERE id = $1;`

	deleteSyncedQueueEntries = `
		DELETE FROM sync_queue
		WHERE synced = TRUE;`

	countPendingQueueEntries = `
		SELECT COUNT(1) FROM sync_queue WHERE synced = FALSE;`

	upsertCacheEntry = `
		INSERT INTO cache (
			key,
			data,
			created_at,
			expires_at
		) VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			data       = excluded.data,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at;`

	getCacheEntry = `
		SELECT
			key,
			data,
			created_at,
			expires_at
		FROM cache
		WHERE key = $1;`

	deleteCacheEntry = `
		DELETE FROM cache
		WHERE key = $1;`

	clearCacheEntries = `
		DELETE FROM cache;`
)
