package models

import "time"

// Audit event types.
const (
	EventRegister    = "REGISTER"
	EventLogin       = "LOGIN"
	EventItemCreated = "ITEM_CREATED"
	EventItemUpdated = "ITEM_UPDATED"
	EventItemDeleted = "ITEM_DELETED"
)

// Event is a single audit log entry.
type Event struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Metadata   any       `json:"metadata,omitempty"`
}
