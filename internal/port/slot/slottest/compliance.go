// Package slottest provides a compliance suite for slot.Store implementations.
package slottest

import (
	"context"
	"testing"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/slot"
)

// Run exercises the slot.Store contract against s.
func Run(t *testing.T, s slot.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadMissing", func(t *testing.T) {
		payload, ok, err := s.Load(ctx, "never-saved")
		if err != nil {
			t.Fatal(err)
		}
		if ok || payload != nil {
			t.Fatalf("expected miss, got ok=%v payload=%q", ok, payload)
		}
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		want := `[{"id":"1","text":"Sync","completed":false}]`
		if err := s.Save(ctx, slot.Tasks, []byte(want)); err != nil {
			t.Fatal(err)
		}
		got, ok, err := s.Load(ctx, slot.Tasks)
		if err != nil {
			t.Fatal(err)
		}
		if !ok || string(got) != want {
			t.Fatalf("Load = %q (ok=%v), want %q", got, ok, want)
		}
	})

	t.Run("Replace", func(t *testing.T) {
		_ = s.Save(ctx, slot.Clients, []byte(`[{"id":"a"}]`))
		if err := s.Save(ctx, slot.Clients, []byte(`[]`)); err != nil {
			t.Fatal(err)
		}
		got, ok, err := s.Load(ctx, slot.Clients)
		if err != nil {
			t.Fatal(err)
		}
		if !ok || string(got) != "[]" {
			t.Fatalf("Load after replace = %q", got)
		}
	})

	t.Run("SlotsIndependent", func(t *testing.T) {
		_ = s.Save(ctx, slot.Employees, []byte(`["e"]`))
		_ = s.Save(ctx, slot.Tasks, []byte(`["t"]`))
		got, _, err := s.Load(ctx, slot.Employees)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != `["e"]` {
			t.Fatalf("employees slot clobbered: %q", got)
		}
	})
}
