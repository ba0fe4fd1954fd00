package logger

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/config"
)

func TestNew(t *testing.T) {
	cfg := config.Logging{Level: "debug", Service: "test-svc"}
	l, closer := New(cfg)
	defer closer.Close()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewAsync(t *testing.T) {
	cfg := config.Logging{Level: "debug", Service: "test-svc", Async: true}
	l, closer := New(cfg)
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	closer.Close()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input).String()
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	if RequestID(ctx) != "" || UserID(ctx) != "" {
		t.Fatal("expected empty fields on a bare context")
	}

	ctx = WithRequestID(ctx, "req-123")
	ctx = WithUserID(ctx, "user-7")
	if got := RequestID(ctx); got != "req-123" {
		t.Errorf("RequestID = %q, want req-123", got)
	}
	if got := UserID(ctx); got != "user-7" {
		t.Errorf("UserID = %q, want user-7", got)
	}

	// Re-tagging one field keeps the other.
	ctx = WithRequestID(ctx, "req-456")
	if got := UserID(ctx); got != "user-7" {
		t.Errorf("UserID after retag = %q, want user-7", got)
	}
}

func attrValue(rec slog.Record, key string) string {
	var got string
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			got = a.Value.String()
			return false
		}
		return true
	})
	return got
}

func TestContextHandler_AddsAttrs(t *testing.T) {
	inner := &recordingHandler{}
	h := &contextHandler{Handler: inner}

	ctx := WithUserID(WithRequestID(context.Background(), "req-9"), "user-1")
	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	if err := h.Handle(ctx, rec); err != nil {
		t.Fatal(err)
	}

	if inner.count() != 1 {
		t.Fatalf("expected 1 record, got %d", inner.count())
	}
	if got := attrValue(inner.records[0], "request_id"); got != "req-9" {
		t.Errorf("request_id = %q, want req-9", got)
	}
	if got := attrValue(inner.records[0], "user_id"); got != "user-1" {
		t.Errorf("user_id = %q, want user-1", got)
	}
}

func TestContextHandler_OmitsEmpty(t *testing.T) {
	inner := &recordingHandler{}
	h := &contextHandler{Handler: inner}

	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	if err := h.Handle(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	if n := inner.records[0].NumAttrs(); n != 0 {
		t.Errorf("expected no attrs, got %d", n)
	}
}
