package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/middleware"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/broadcast"
)

var _ broadcast.Broadcaster = (*Hub)(nil)

// newTestServer serves the hub with the user id taken from ?uid=, standing
// in for the auth middleware.
func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := &user.User{ID: r.URL.Query().Get("uid"), Role: user.RoleEmployee}
		hub.HandleWS(w, r.WithContext(middleware.WithUser(r.Context(), u)))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, uid string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?uid=" + uid
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.CloseNow() })
	return c
}

func waitForConns(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for hub.ConnectionCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections, have %d", n, hub.ConnectionCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readMessage(t *testing.T, c *websocket.Conn, timeout time.Duration) (Message, bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, data, err := c.Read(ctx)
	if err != nil {
		return Message{}, false
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return msg, true
}

func TestHubBroadcastReachesEveryone(t *testing.T) {
	hub := NewHub("")
	srv := newTestServer(t, hub)
	a := dial(t, srv, "u1")
	b := dial(t, srv, "u2")
	waitForConns(t, hub, 2)

	hub.BroadcastEvent(context.Background(), broadcast.EventEntitiesInvalidated,
		broadcast.InvalidatedEvent{Kind: "task", EntityID: "t1", Op: "create"})

	for _, c := range []*websocket.Conn{a, b} {
		msg, ok := readMessage(t, c, 5*time.Second)
		if !ok {
			t.Fatal("expected a message")
		}
		if msg.Type != broadcast.EventEntitiesInvalidated {
			t.Fatalf("unexpected type %q", msg.Type)
		}
		var ev broadcast.InvalidatedEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			t.Fatalf("payload: %v", err)
		}
		if ev.EntityID != "t1" || ev.Op != "create" {
			t.Fatalf("unexpected payload %+v", ev)
		}
	}
}

func TestHubSendToUserTargetsOneUser(t *testing.T) {
	hub := NewHub("")
	srv := newTestServer(t, hub)
	a := dial(t, srv, "u1")
	b := dial(t, srv, "u2")
	waitForConns(t, hub, 2)

	hub.SendToUser(context.Background(), "u1", broadcast.EventNotification,
		broadcast.NotificationEvent{Level: broadcast.LevelError, Message: "save failed"})

	if msg, ok := readMessage(t, a, 5*time.Second); !ok || msg.Type != broadcast.EventNotification {
		t.Fatalf("u1 expected a notification, got %+v (ok=%v)", msg, ok)
	}
	if _, ok := readMessage(t, b, 200*time.Millisecond); ok {
		t.Fatal("u2 must not receive u1's notification")
	}
}

func TestHubDisconnectRemovesConnection(t *testing.T) {
	hub := NewHub("")
	srv := newTestServer(t, hub)
	c := dial(t, srv, "u1")
	waitForConns(t, hub, 1)

	_ = c.Close(websocket.StatusNormalClosure, "")
	waitForConns(t, hub, 0)
}

func TestHubBroadcastWithoutConnections(t *testing.T) {
	hub := NewHub("")
	hub.BroadcastEvent(context.Background(), broadcast.EventEntitiesInvalidated, broadcast.InvalidatedEvent{Kind: "client"})
	if hub.ConnectionCount() != 0 {
		t.Fatal("expected no connections")
	}
}

func TestHubBroadcastEventMarshalError(t *testing.T) {
	hub := NewHub("")
	// A channel cannot be marshaled to JSON; the event is dropped and logged.
	hub.BroadcastEvent(context.Background(), "bad", make(chan int))
}

func TestHubRemoveUnknownConnection(t *testing.T) {
	hub := NewHub("")
	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.remove(&conn{cancel: cancel, userID: "u1"})
}
