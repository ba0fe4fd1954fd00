// Package broadcast defines the port for pushing real-time events to
// connected UI clients.
package broadcast

import "context"

// Event types sent to UI clients.
const (
	// EventEntitiesInvalidated tells clients to refetch a collection.
	EventEntitiesInvalidated = "entities.invalidated"
	// EventNotification carries a transient user-visible message.
	EventNotification = "notification"
)

// Notification levels.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// InvalidatedEvent is the payload of EventEntitiesInvalidated.
type InvalidatedEvent struct {
	Kind     string `json:"kind"`
	EntityID string `json:"entity_id,omitempty"`
	Op       string `json:"op"`
}

// NotificationEvent is the payload of EventNotification.
type NotificationEvent struct {
	Level    string `json:"level"`
	Message  string `json:"message"`
	Kind     string `json:"kind,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
	Op       string `json:"op,omitempty"`
}

// Broadcaster sends real-time events to all connected clients.
type Broadcaster interface {
	// BroadcastEvent sends a typed event to all connected clients.
	BroadcastEvent(ctx context.Context, eventType string, payload any)

	// SendToUser sends a typed event only to the connections of one user.
	SendToUser(ctx context.Context, userID, eventType string, payload any)
}
