package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/otel"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/middleware"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/broadcast"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/messagequeue"
)

// Entity kinds.
const (
	KindTask     = "tasks"
	KindClient   = "clients"
	KindEmployee = "employees"
)

// Mutation operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Status is the lifecycle position of the latest mutation on an entity.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// outcomeTTL bounds how long a finished outcome is reported before the
// entity reads as idle again.
const outcomeTTL = 10 * time.Minute

// MutationState is the last known mutation on one entity.
type MutationState struct {
	Kind      string    `json:"kind"`
	EntityID  string    `json:"entity_id"`
	Op        string    `json:"op,omitempty"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Mutation describes one user intent. EntityID is empty for creates.
// Keys are the snapshot keys the write makes stale.
type Mutation struct {
	Kind     string
	EntityID string
	Op       string
	Keys     []string
}

// localInvalidator drops only this instance's copy of a snapshot. The tiered
// cache implements it; other caches fall back to Delete.
type localInvalidator interface {
	InvalidateLocal(ctx context.Context, key string) error
}

// Coordinator applies mutations one at a time per entity and fans out the
// result: snapshot invalidation, a cross-instance change event and a
// websocket message.
type Coordinator struct {
	mu     sync.Mutex
	states map[string]*MutationState

	snaps      *Snapshots
	queue      messagequeue.Queue
	hub        broadcast.Broadcaster
	metrics    *otel.Metrics
	instanceID string
	now        func() time.Time
}

// NewCoordinator creates a Coordinator. queue, hub and metrics may be nil.
func NewCoordinator(snaps *Snapshots, queue messagequeue.Queue, hub broadcast.Broadcaster, metrics *otel.Metrics) *Coordinator {
	return &Coordinator{
		states:     make(map[string]*MutationState),
		snaps:      snaps,
		queue:      queue,
		hub:        hub,
		metrics:    metrics,
		instanceID: uuid.NewString(),
		now:        time.Now,
	}
}

func stateKey(kind, id string) string { return kind + "/" + id }

// State returns the last outcome for an entity, or StatusIdle when nothing
// is in flight or recorded.
func (c *Coordinator) State(kind, id string) MutationState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[stateKey(kind, id)]
	if !ok || (st.Status != StatusPending && c.now().Sub(st.UpdatedAt) > outcomeTTL) {
		return MutationState{Kind: kind, EntityID: id, Status: StatusIdle}
	}
	return *st
}

func (c *Coordinator) begin(m Mutation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := stateKey(m.Kind, m.EntityID)
	if st, ok := c.states[key]; ok && st.Status == StatusPending {
		return fmt.Errorf("%s %s: %w", m.Kind, m.EntityID, domain.ErrConflict)
	}
	c.states[key] = &MutationState{Kind: m.Kind, EntityID: m.EntityID, Op: m.Op, Status: StatusPending, UpdatedAt: c.now()}
	return nil
}

func (c *Coordinator) finish(m Mutation, entityID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m.EntityID == "" && entityID == "" {
		return
	}
	st := &MutationState{Kind: m.Kind, EntityID: entityID, Op: m.Op, Status: StatusSuccess, UpdatedAt: c.now()}
	if err != nil {
		st.Status = StatusFailure
		st.Error = err.Error()
	}
	c.states[stateKey(m.Kind, entityID)] = st
	c.prune()
}

// prune drops expired outcomes. Caller holds c.mu.
func (c *Coordinator) prune() {
	now := c.now()
	for k, st := range c.states {
		if st.Status != StatusPending && now.Sub(st.UpdatedAt) > outcomeTTL {
			delete(c.states, k)
		}
	}
}

// Apply runs fn as the mutation m. fn returns the id of the entity it
// touched. A second mutation on an entity that is still pending fails with
// domain.ErrConflict without calling fn. There is no retry and no
// optimistic update: on failure the caller's snapshot is left untouched.
func (c *Coordinator) Apply(ctx context.Context, m Mutation, fn func(context.Context) (string, error)) error {
	if m.EntityID != "" {
		if err := c.begin(m); err != nil {
			return err
		}
	}

	ctx, span := otel.StartMutationSpan(ctx, m.Kind, m.Op, m.EntityID)
	start := c.now()
	id, err := fn(ctx)
	if id == "" {
		id = m.EntityID
	}
	c.metrics.RecordMutation(ctx, m.Kind, m.Op, c.now().Sub(start), err)
	otel.EndSpan(span, err)
	c.finish(m, id, err)

	if err != nil {
		c.notifyFailure(ctx, m, id, err)
		return err
	}
	c.publishSuccess(ctx, m, id)
	return nil
}

func (c *Coordinator) publishSuccess(ctx context.Context, m Mutation, id string) {
	for _, key := range m.Keys {
		if err := c.snaps.Invalidate(ctx, key); err != nil {
			slog.Warn("snapshot invalidation failed", "key", key, "error", err)
		}
		c.publishChange(ctx, m, id, key)
	}
	if c.hub != nil {
		c.hub.BroadcastEvent(ctx, broadcast.EventEntitiesInvalidated, broadcast.InvalidatedEvent{
			Kind: m.Kind, EntityID: id, Op: m.Op,
		})
	}
}

func (c *Coordinator) publishChange(ctx context.Context, m Mutation, id, key string) {
	if c.queue == nil {
		return
	}
	data, err := json.Marshal(messagequeue.EntityChangedPayload{
		Kind:       m.Kind,
		EntityID:   id,
		Op:         m.Op,
		CacheKey:   key,
		OriginID:   c.instanceID,
		OccurredAt: c.now().UTC(),
	})
	if err != nil {
		slog.Error("marshal entity change", "kind", m.Kind, "error", err)
		return
	}
	// The write already succeeded; peers fall back to their snapshot TTL.
	if err := c.queue.Publish(ctx, messagequeue.SubjectFor(m.Kind), data); err != nil {
		slog.Error("failed to publish entity change", "kind", m.Kind, "entity_id", id, "error", err)
	}
}

func (c *Coordinator) notifyFailure(ctx context.Context, m Mutation, id string, err error) {
	level := broadcast.LevelError
	if errors.Is(err, domain.ErrNotFound) {
		level = broadcast.LevelWarn
		slog.Warn("mutation target missing", "kind", m.Kind, "op", m.Op, "entity_id", id)
	} else {
		slog.Error("mutation failed", "kind", m.Kind, "op", m.Op, "entity_id", id, "error", err)
	}

	u := middleware.UserFromContext(ctx)
	if c.hub == nil || u == nil {
		return
	}
	c.hub.SendToUser(ctx, u.ID, broadcast.EventNotification, broadcast.NotificationEvent{
		Level:    level,
		Message:  failureMessage(m, err),
		Kind:     m.Kind,
		EntityID: id,
		Op:       m.Op,
	})
}

func failureMessage(m Mutation, err error) string {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Sprintf("That item no longer exists (%s %s).", m.Kind, m.Op)
	}
	return fmt.Sprintf("Could not %s %s: %v", m.Op, m.Kind, err)
}

// HandleChanged is the messagequeue.Handler for entity change events from
// other instances. It drops the local copy of the named snapshot; the
// shared level was already cleared by the publisher.
func (c *Coordinator) HandleChanged(ctx context.Context, _ string, data []byte) error {
	var p messagequeue.EntityChangedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode entity change: %w", err)
	}
	if p.OriginID == c.instanceID {
		return nil
	}

	var err error
	if li, ok := c.snaps.cache.(localInvalidator); ok {
		c.snaps.advance(p.CacheKey)
		err = li.InvalidateLocal(ctx, p.CacheKey)
	} else {
		err = c.snaps.Invalidate(ctx, p.CacheKey)
	}
	if err != nil {
		return fmt.Errorf("invalidate %s: %w", p.CacheKey, err)
	}
	slog.Debug("snapshot invalidated by peer", "key", p.CacheKey, "kind", p.Kind, "op", p.Op)
	return nil
}
