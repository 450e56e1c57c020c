package events

import "time"

// Event defines the contract for all workspace events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "FILES_UPLOADED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	FilesUploaded    = "FILES_UPLOADED"
	WorkspaceCleared = "WORKSPACE_CLEARED"
	ExamplesCloned   = "EXAMPLES_CLONED"
	ResponseSaved    = "RESPONSE_SAVED"
)

// NewWorkspaceEvent stamps a workspace mutation for username.
func NewWorkspaceEvent(eventType, username string, files []string) BaseEvent {
	if files == nil {
		files = []string{}
	}
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"username": username,
			"files":    files,
		},
		OccurredAt: time.Now().UTC(),
	}
}
