// Package cachetest provides a compliance suite for cache.Cache implementations.
package cachetest

import (
	"context"
	"testing"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/cache"
)

// Run runs the standard compliance test suite against any Cache implementation.
func Run(t *testing.T, c cache.Cache) {
	t.Helper()
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		if err := c.Set(ctx, cache.KeyClients, []byte(`[{"id":"c1"}]`), time.Minute); err != nil {
			t.Fatal(err)
		}
		val, found, err := c.Get(ctx, cache.KeyClients)
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after Set")
		}
		if string(val) != `[{"id":"c1"}]` {
			t.Fatalf("unexpected snapshot %s", val)
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		_, found, err := c.Get(ctx, cache.TaskKey("nobody"))
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss for nonexistent key")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		key := cache.TaskKey("u-del")
		_ = c.Set(ctx, key, []byte("[]"), time.Minute)
		if err := c.Delete(ctx, key); err != nil {
			t.Fatal(err)
		}
		_, found, err := c.Get(ctx, key)
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss after Delete")
		}
	})

	t.Run("DeleteNonexistent", func(t *testing.T) {
		if err := c.Delete(ctx, cache.TaskKey("never-existed")); err != nil {
			t.Fatal("Delete of nonexistent key should not error")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = c.Set(ctx, cache.KeyEmployees, []byte("v1"), time.Minute)
		_ = c.Set(ctx, cache.KeyEmployees, []byte("v2"), time.Minute)
		val, found, err := c.Get(ctx, cache.KeyEmployees)
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after overwrite")
		}
		if string(val) != "v2" {
			t.Fatalf("expected v2 after overwrite, got %s", val)
		}
	})
}
