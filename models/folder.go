package models

import "time"

// Folder groups notes and tasks into a hierarchy.
type Folder struct {
	// ID is the unique client-generated identifier of the folder.
	ID string `json:"id"`

	// Name is the display name of the folder.
	Name string `json:"name"`

	// ParentID is the ID of the parent folder, empty for top-level folders.
	ParentID string `json:"parentId,omitempty"`

	// CreatedAt is the timestamp when the folder was first created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is refreshed on every write, local or remote.
	UpdatedAt time.Time `json:"updatedAt"`

	// DeviceID is the origin-device tag stamped on push.
	DeviceID string `json:"deviceId,omitempty"`
}
