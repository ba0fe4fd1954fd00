// Package cache defines the port interface for caching entity snapshots.
package cache

import (
	"context"
	"time"
)

// Cache is the port interface for key-value caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Snapshot keys. Task snapshots are per owner since remote lists are
// row-scoped to the caller.
const (
	KeyClients   = "clients"
	KeyEmployees = "employees"
	keyTasks     = "tasks:"
)

// TaskKey returns the snapshot key for one owner's tasks.
func TaskKey(ownerID string) string {
	return keyTasks + ownerID
}
