package session

import "time"

// State is the dashboard lifecycle position.
//
//	Empty     no active dashboard
//	Draft     name unset or unsaved changes present
//	Saved     name set, widgets match the last-persisted snapshot
//	Published server-flagged; the Viewer surface renders it read-only
type State string

const (
	StateEmpty     State = "empty"
	StateDraft     State = "draft"
	StateSaved     State = "saved"
	StatePublished State = "published"
)

// Status is the session snapshot served to the composition surface.
type Status struct {
	State       State     `json:"state"`
	Name        string    `json:"name,omitempty"`
	WidgetCount int       `json:"widget_count"`
	HasChanges  bool      `json:"has_changes"`
	IsPublished bool      `json:"is_published"`
	EditMode    bool      `json:"edit_mode"`
	LastSaved   time.Time `json:"last_saved,omitempty"`
}
