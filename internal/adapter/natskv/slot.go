package natskv

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Slots stores named collections in a KV bucket without expiry.
type Slots struct {
	kv jetstream.KeyValue
}

// NewSlots wraps kv as a slot store. The bucket must not carry a TTL.
func NewSlots(kv jetstream.KeyValue) *Slots {
	return &Slots{kv: kv}
}

// Load returns the payload saved under name.
func (s *Slots) Load(ctx context.Context, name string) ([]byte, bool, error) {
	entry, err := s.kv.Get(ctx, name)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load slot %s: %w", name, err)
	}
	return entry.Value(), true, nil
}

// Save replaces the payload under name. Put returns after the server has
// stored the revision.
func (s *Slots) Save(ctx context.Context, name string, payload []byte) error {
	if _, err := s.kv.Put(ctx, name, payload); err != nil {
		return fmt.Errorf("save slot %s: %w", name, err)
	}
	return nil
}

// Close is a no-op; the connection belongs to the queue.
func (s *Slots) Close() error { return nil }
