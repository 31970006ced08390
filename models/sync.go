package models

import (
	"encoding/json"
	"time"
)

// Operation is the kind of local mutation recorded in the sync queue.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Entity is the record collection a sync-queue entry refers to.
type Entity string

const (
	EntityNote   Entity = "note"
	EntityTodo   Entity = "todo"
	EntityFolder Entity = "folder"
)

// Remote collection names under users/{uid}/.
const (
	CollectionNotes   = "notes"
	CollectionFolders = "folders"
	CollectionTodos   = "todos"
)

// Collection returns the remote collection name for the entity kind.
func (e Entity) Collection() string {
	switch e {
	case EntityNote:
		return CollectionNotes
	case EntityTodo:
		return CollectionTodos
	case EntityFolder:
		return CollectionFolders
	}
	return ""
}

// SyncQueueEntry is a durable record of a mutation performed while offline,
// pending replay against the remote store. Duplicate entries for the same
// record are permitted; replay is idempotent per entry.
type SyncQueueEntry struct {
	// ID is assigned by the local store's auto-incrementing key.
	ID int64 `json:"id"`

	// Operation is the mutation kind: create, update or delete.
	Operation Operation `json:"type"`

	// Entity is the record kind: note, todo or folder.
	Entity Entity `json:"entity"`

	// EntityID is the ID of the mutated record.
	EntityID string `json:"entityId"`

	// Payload is the full record snapshot for create/update, nil for delete.
	Payload json.RawMessage `json:"data,omitempty"`

	// Timestamp is when the mutation was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Synced is set once the entry has been replayed successfully. Synced
	// entries are garbage-collected at the end of a drain pass.
	Synced bool `json:"synced"`
}

// SyncResult is the outcome of a push or pull operation. Failures carry a
// short user-facing message; the underlying cause is logged, not surfaced.
type SyncResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DataChange is the payload delivered to data-change subscribers whenever a
// remote mirror update lands or a pull completes.
type DataChange struct {
	// Collection is "notes", "folders", "todos", "all" or "sync_complete".
	Collection string `json:"type"`

	// Records is the new whole-collection contents as a JSON array, empty
	// for lifecycle notifications such as sync_complete.
	Records json.RawMessage `json:"data,omitempty"`
}
