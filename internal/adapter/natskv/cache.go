// Package natskv implements the cache and slot ports on NATS JetStream KV.
// As a cache it is the L2 tier shared by every instance; as a slot store it
// persists local-mode collections on the NATS server.
package natskv

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// KV keys are limited to [-/_=.a-zA-Z0-9]; snapshot keys contain ':'.
func encodeKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// Cached values carry an 8-byte big-endian expiry (unix nanoseconds, zero
// for none) ahead of the payload. Bucket-level TTL cannot vary per key.
const expiryLen = 8

func wrap(value []byte, expires time.Time) []byte {
	out := make([]byte, expiryLen+len(value))
	if !expires.IsZero() {
		binary.BigEndian.PutUint64(out, uint64(expires.UnixNano()))
	}
	copy(out[expiryLen:], value)
	return out
}

func unwrap(raw []byte, now time.Time) (value []byte, live bool) {
	if len(raw) < expiryLen {
		return nil, false
	}
	if exp := binary.BigEndian.Uint64(raw); exp != 0 && now.UnixNano() >= int64(exp) {
		return nil, false
	}
	return raw[expiryLen:], true
}

// Cache stores snapshots in a JetStream KV bucket shared by all instances.
type Cache struct {
	kv  jetstream.KeyValue
	now func() time.Time
}

// New returns a cache on kv.
func New(kv jetstream.KeyValue) *Cache {
	return &Cache{kv: kv, now: time.Now}
}

// Get returns a live snapshot. Expired or malformed entries read as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := c.kv.Get(ctx, encodeKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	value, live := unwrap(entry.Value(), c.now())
	return value, live, nil
}

// Set stores value until ttl elapses; ttl <= 0 keeps it until overwritten.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = c.now().Add(ttl)
	}
	_, err := c.kv.Put(ctx, encodeKey(key), wrap(value, expires))
	return err
}

// Delete drops a snapshot. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, encodeKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	return err
}
