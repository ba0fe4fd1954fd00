package messagequeue

import (
	"strings"
	"testing"
)

func TestValidateEntityChanged(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		data    string
		wantErr string
	}{
		{
			name:    "valid tasks event",
			subject: SubjectTasksChanged,
			data:    `{"kind":"tasks","entity_id":"t1","op":"update","cache_key":"tasks:u1","origin_id":"i1"}`,
		},
		{
			name:    "valid clients event",
			subject: SubjectClientsChanged,
			data:    `{"kind":"clients","entity_id":"c1","op":"delete","cache_key":"clients"}`,
		},
		{
			name:    "invalid json",
			subject: SubjectTasksChanged,
			data:    `{not valid json`,
			wantErr: "invalid JSON",
		},
		{
			name:    "missing kind",
			subject: SubjectTasksChanged,
			data:    `{"cache_key":"tasks:u1"}`,
			wantErr: "kind is required",
		},
		{
			name:    "kind mismatch",
			subject: SubjectTasksChanged,
			data:    `{"kind":"clients","cache_key":"clients"}`,
			wantErr: "does not match subject",
		},
		{
			name:    "missing cache key",
			subject: SubjectClientsChanged,
			data:    `{"kind":"clients"}`,
			wantErr: "cache_key is required",
		},
		{
			name:    "wrong field type",
			subject: SubjectClientsChanged,
			data:    `{"kind":42}`,
			wantErr: "schema validation failed",
		},
		{
			name:    "foreign subject",
			subject: "unknown.subject",
			data:    `{"foo":"bar"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.subject, []byte(tt.data))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSubjectFor(t *testing.T) {
	if got := SubjectFor("employees"); got != SubjectEmployeeChanged {
		t.Fatalf("SubjectFor(employees) = %q", got)
	}
}
