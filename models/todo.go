package models

import "time"

// TodoItem represents a single task. Tasks imported from an external
// calendar carry a GoogleCalendarEventID and a derived "gcal-" prefixed ID
// so that re-importing the same event is idempotent.
type TodoItem struct {
	// ID is the unique client-generated identifier of the task.
	ID string `json:"id"`

	// Text is the task text shown in lists.
	Text string `json:"text"`

	// Completed marks the task as done.
	Completed bool `json:"completed"`

	// Description is an optional longer description.
	Description string `json:"description,omitempty"`

	// Location is an optional location, filled for imported calendar events.
	Location string `json:"location,omitempty"`

	// DueDate is the optional due timestamp. Nil means the task has no due
	// date and never appears in the "today" view.
	DueDate *time.Time `json:"dueDate,omitempty"`

	// FolderID is the ID of the folder containing this task, if any.
	FolderID string `json:"folderId,omitempty"`

	// GoogleCalendarEventID is the external event ID for tasks imported
	// from a calendar. Used for caller-side dedup before insertion.
	GoogleCalendarEventID string `json:"googleCalendarEventId,omitempty"`

	// CreatedAt is the timestamp when the task was first created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is refreshed on every write, local or remote.
	UpdatedAt time.Time `json:"updatedAt"`

	// DeviceID is the origin-device tag stamped on push.
	DeviceID string `json:"deviceId,omitempty"`
}
