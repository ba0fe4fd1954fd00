package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

func envelope(eventType string, payload any) (Message, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return Message{}, false
	}
	return Message{Type: eventType, Payload: json.RawMessage(data)}, true
}

// BroadcastEvent marshals a typed event and broadcasts it to every client.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	if msg, ok := envelope(eventType, payload); ok {
		h.Broadcast(ctx, msg)
	}
}

// SendToUser marshals a typed event and sends it to one user's clients.
func (h *Hub) SendToUser(ctx context.Context, userID, eventType string, payload any) {
	if msg, ok := envelope(eventType, payload); ok {
		h.SendTo(ctx, userID, msg)
	}
}
