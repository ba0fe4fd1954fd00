package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/otel"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/cache"
)

// Snapshots caches whole entity collections as JSON. Concurrent misses on
// the same key share one store read.
//
// Every key carries a generation that invalidation advances. A load only
// writes its result back when the generation it started under is still
// current, so a read that raced a write never re-caches the old collection.
type Snapshots struct {
	cache   cache.Cache
	ttl     time.Duration
	group   singleflight.Group
	metrics *otel.Metrics

	mu  sync.Mutex
	gen map[string]uint64
}

// NewSnapshots creates a snapshot cache. A nil cache disables caching;
// loads are still coalesced.
func NewSnapshots(c cache.Cache, ttl time.Duration, m *otel.Metrics) *Snapshots {
	return &Snapshots{cache: c, ttl: ttl, metrics: m, gen: make(map[string]uint64)}
}

// Invalidate drops the cached snapshot for key.
func (s *Snapshots) Invalidate(ctx context.Context, key string) error {
	s.advance(key)
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, key)
}

// advance retires every load in flight for key. Callers arriving after it
// start a fresh load instead of joining one that may predate a write.
func (s *Snapshots) advance(key string) {
	s.mu.Lock()
	s.gen[key]++
	s.group.Forget(key)
	s.mu.Unlock()
}

func (s *Snapshots) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[key]
}

// storeIfCurrent caches v unless key was invalidated after gen was read.
// The lock is held across the write so a concurrent Invalidate deletes
// after it, never before.
func (s *Snapshots) storeIfCurrent(ctx context.Context, key string, gen uint64, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[key] != gen {
		slog.Debug("discarding snapshot load that raced a write", "key", key)
		return
	}
	s.store(ctx, key, v)
}

func (s *Snapshots) lookup(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("snapshot cache get failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.Warn("discarding unreadable snapshot", "key", key, "error", err)
		_ = s.cache.Delete(ctx, key)
		return false
	}
	return true
}

func (s *Snapshots) store(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("snapshot marshal failed", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		slog.Warn("snapshot cache set failed", "key", key, "error", err)
	}
}

// loadSnapshot returns the collection under key, reading through to load
// on a miss. The shared load runs detached from any single caller's
// cancellation.
func loadSnapshot[T any](ctx context.Context, s *Snapshots, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	var items []T
	if s.lookup(ctx, key, &items) {
		return items, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		gen := s.generation(key)
		lctx, span := otel.StartSnapshotSpan(context.WithoutCancel(ctx), key)
		loaded, err := load(lctx)
		otel.EndSpan(span, err)
		if err != nil {
			return nil, err
		}
		s.metrics.RecordSnapshotLoad(lctx, key)
		s.storeIfCurrent(lctx, key, gen, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return v.([]T), nil
}
