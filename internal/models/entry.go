package models

import "time"

// TimeEntry represents a single recorded span of activity.
//
// Raw entries come from the tracker; merged entries are synthesized by the
// calculator package when consecutive same-day activity in the same
// application window is collapsed for display. Merge metadata is only ever
// set on synthesized entries and is not persisted.
type TimeEntry struct {
	// ID is the unique identifier for the entry (UUID format). A merged
	// entry reuses the ID of its first chronological constituent.
	ID string `json:"id"`

	// UserID is the owning account.
	UserID string `json:"-"`

	// Timestamp is when the activity was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Application is the program the activity was captured from.
	Application string `json:"application"`

	// WindowTitle is the captured window title (free text).
	WindowTitle string `json:"window_title"`

	// DurationSec is the tracked duration in seconds, never negative.
	DurationSec int64 `json:"duration_sec"`

	// ClientID is the assigned client, empty when unassigned.
	ClientID string `json:"client_id,omitempty"`

	// Notes is optional free text.
	Notes string `json:"notes,omitempty"`

	// Billable marks the entry as billable. Defaults to true on creation.
	Billable bool `json:"billable"`

	// Merge metadata, set only on synthesized entries.

	// Merged is true when this entry aggregates several raw entries.
	Merged bool `json:"merged,omitempty"`

	// MergedCount is the number of constituent entries (absent or 1 for a
	// raw entry).
	MergedCount int `json:"merged_count,omitempty"`

	// MergedIDs lists constituent entry IDs in chronological order.
	MergedIDs []string `json:"merged_ids,omitempty"`

	// StartTime and EndTime span the earliest and latest constituent
	// timestamps.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}
