package models

// Calendar is a single entry from the external provider's calendar list.
type Calendar struct {
	ID              string `json:"id"`
	Summary         string `json:"summary"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Primary         bool   `json:"primary,omitempty"`
}

// EventTime is either a timed start/end (DateTime, RFC 3339) or an all-day
// date (Date, "2006-01-02"). Exactly one of the two is set.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

// CalendarEvent is a single event fetched from the external provider.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
}

// ImportResult is the outcome of a calendar import batch: the accumulated
// tasks and their count. Per-calendar failures shrink the result set but do
// not abort the batch.
type ImportResult struct {
	Tasks []TodoItem `json:"tasks"`
	Count int        `json:"count"`
}
