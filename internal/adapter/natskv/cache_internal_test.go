package natskv

import (
	"testing"
	"time"
)

func TestWrapUnwrap(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		expires  time.Time
		at       time.Time
		wantLive bool
	}{
		{"no expiry", time.Time{}, now.Add(24 * time.Hour), true},
		{"before expiry", now.Add(time.Minute), now, true},
		{"at expiry", now.Add(time.Minute), now.Add(time.Minute), false},
		{"after expiry", now.Add(time.Minute), now.Add(time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, live := unwrap(wrap([]byte(`[]`), tt.expires), tt.at)
			if live != tt.wantLive {
				t.Fatalf("live = %v, want %v", live, tt.wantLive)
			}
			if live && string(got) != `[]` {
				t.Fatalf("value = %q", got)
			}
		})
	}
}

func TestUnwrapShortValue(t *testing.T) {
	if _, live := unwrap([]byte("abc"), time.Now()); live {
		t.Fatal("a value shorter than the header must read as a miss")
	}
}

func TestEncodeKeyIsKVSafe(t *testing.T) {
	k := encodeKey("tasks:00000000-0000-0000-0000-000000000000")
	for _, r := range k {
		ok := r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			t.Fatalf("key %q contains %q", k, r)
		}
	}
}
