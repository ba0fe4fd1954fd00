// Package ristretto implements the cache port with an in-process
// dgraph-io/ristretto cache. It is the L1 tier for entity snapshots.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Snapshots are whole collections, so they are few and comparatively large.
const avgSnapshotBytes = 4 << 10

// Cache holds serialized snapshots in process memory.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a cache bounded to maxCostBytes of stored values.
func New(maxCostBytes int64) (*Cache, error) {
	counters := maxCostBytes / avgSnapshotBytes * 10
	if counters < 1000 {
		counters = 1000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: counters,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

// NewMB is New with the bound given in megabytes.
func NewMB(maxSizeMB int64) (*Cache, error) {
	return New(maxSizeMB << 20)
}

// Get retrieves a snapshot.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := c.c.Get(key)
	return val, found, nil
}

// Set stores a copy of value. Writes are buffered by ristretto, so Set waits
// for the buffer to drain: a reader that follows a writer must see the value.
// A value the admission policy rejects simply stays uncached.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	v := append([]byte(nil), value...)
	c.c.SetWithTTL(key, v, int64(len(v)), ttl)
	c.c.Wait()
	return nil
}

// Delete drops a snapshot.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

// HitRatio reports the fraction of Gets served from memory.
func (c *Cache) HitRatio() float64 {
	return c.c.Metrics.Ratio()
}

// Close shuts down the cache and releases resources.
func (c *Cache) Close() {
	c.c.Close()
}
