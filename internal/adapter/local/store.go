// Package local implements the entity store for local mode: each collection
// lives in memory and is written back as one blob to a named slot after
// every mutation. There is no authentication boundary.
package local

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/client"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/task"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/database"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/slot"
)

var _ database.Store = (*Store)(nil)

// errNoChange aborts a mutation without writing the slot.
var errNoChange = errors.New("no change")

// collection is one slot's items. The in-memory copy only changes after
// the slot write succeeded.
type collection[T any] struct {
	mu     sync.RWMutex
	name   string
	items  []T
	encode func([]T) ([]byte, error)
}

func (c *collection[T]) snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *collection[T]) find(match func(*T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.items {
		if match(&c.items[i]) {
			return c.items[i], true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) mutate(ctx context.Context, slots slot.Store, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(slices.Clone(c.items))
	if err != nil {
		return err
	}
	payload, err := c.encode(next)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	if err := slots.Save(ctx, c.name, payload); err != nil {
		return fmt.Errorf("persist %s: %w", c.name, err)
	}
	c.items = next
	return nil
}

// Store is the local-mode database.Store.
type Store struct {
	slots slot.Store
	now   func() time.Time
	newID func() string

	tasks   collection[task.Task]
	clients collection[client.Client]
	users   collection[user.User]
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for created_at and last_contact.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs overrides id generation.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Open loads every collection from slots. Unreadable payloads start empty;
// only a failing backend is an error.
func Open(ctx context.Context, slots slot.Store, opts ...Option) (*Store, error) {
	s := &Store{
		slots:   slots,
		now:     time.Now,
		newID:   uuid.NewString,
		tasks:   collection[task.Task]{name: slot.Tasks, encode: encodeTasks},
		clients: collection[client.Client]{name: slot.Clients, encode: encodeClients},
		users:   collection[user.User]{name: slot.Employees, encode: encodeUsers},
	}
	for _, opt := range opts {
		opt(s)
	}

	payload, err := load(ctx, slots, slot.Tasks)
	if err != nil {
		return nil, err
	}
	s.tasks.items = decodeTasks(payload)

	if payload, err = load(ctx, slots, slot.Clients); err != nil {
		return nil, err
	}
	s.clients.items = decodeClients(payload)

	if payload, err = load(ctx, slots, slot.Employees); err != nil {
		return nil, err
	}
	s.users.items = decodeUsers(payload)

	return s, nil
}

func load(ctx context.Context, slots slot.Store, name string) ([]byte, error) {
	payload, _, err := slots.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return payload, nil
}

// Close closes the slot backend.
func (s *Store) Close() error {
	return s.slots.Close()
}

func indexOf[T any](items []T, id func(*T) string, want string) int {
	for i := range items {
		if id(&items[i]) == want {
			return i
		}
	}
	return -1
}
