package websocket

import "time"

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Live widget data
	MessageTypeWidgetUpdate MessageType = "widget_update"

	// Dashboard lifecycle
	MessageTypeDashboardPublished MessageType = "dashboard_published"
	MessageTypeDashboardDeleted   MessageType = "dashboard_deleted"
	MessageTypeSessionState       MessageType = "session_state"

	// System messages
	MessageTypeSystemStatus MessageType = "system_status"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// DashboardEventData announces a publish or delete to the viewer surface.
type DashboardEventData struct {
	Name string `json:"name"`
}

// SessionStateData mirrors a session lifecycle change.
type SessionStateData struct {
	State    string `json:"state"`
	Previous string `json:"previous_state"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Helper functions for creating specific message types

// NewWidgetUpdateMessage wraps a poll state snapshot for broadcast. The
// data is the PollState copy handed out by the poller.
func NewWidgetUpdateMessage(state interface{}) Message {
	return NewMessage(MessageTypeWidgetUpdate, state)
}

func NewDashboardPublishedMessage(name string) Message {
	return NewMessage(MessageTypeDashboardPublished, DashboardEventData{Name: name})
}

func NewDashboardDeletedMessage(name string) Message {
	return NewMessage(MessageTypeDashboardDeleted, DashboardEventData{Name: name})
}

func NewSessionStateMessage(newState, previousState string) Message {
	return NewMessage(MessageTypeSessionState, SessionStateData{
		State:    newState,
		Previous: previousState,
	})
}

func NewSystemStatusMessage(status interface{}) Message {
	return NewMessage(MessageTypeSystemStatus, status)
}
