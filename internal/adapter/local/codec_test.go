package local

import (
	"testing"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/client"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/task"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
)

func ptr[T any](v T) *T { return &v }

func TestTaskCodecRoundTrip(t *testing.T) {
	created := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	due := time.Date(2024, 6, 12, 17, 30, 0, 0, time.FixedZone("PKT", 5*3600))
	in := []task.Task{
		{ID: "1", Text: "Sync", CreatedAt: created, DueDate: &due, Priority: task.PriorityHigh, Category: "ops"},
		{ID: "2", Text: "Follow up", Completed: true, CreatedAt: created.Add(time.Hour), Priority: task.PriorityLow},
	}

	payload, err := encodeTasks(in)
	if err != nil {
		t.Fatal(err)
	}
	out := decodeTasks(payload)

	if len(out) != len(in) {
		t.Fatalf("decoded %d tasks, want %d", len(out), len(in))
	}
	for i := range in {
		a, b := in[i], out[i]
		if a.ID != b.ID || a.Text != b.Text || a.Completed != b.Completed || a.Priority != b.Priority || a.Category != b.Category {
			t.Errorf("task %d: got %+v, want %+v", i, b, a)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			t.Errorf("task %d: created_at %v, want %v", i, b.CreatedAt, a.CreatedAt)
		}
		if a.HasDueDate() != b.HasDueDate() {
			t.Fatalf("task %d: due date presence mismatch", i)
		}
		if a.HasDueDate() && !a.DueDate.Equal(*b.DueDate) {
			t.Errorf("task %d: due_date %v, want %v", i, *b.DueDate, *a.DueDate)
		}
	}
}

func TestTaskCodecWritesRFC3339(t *testing.T) {
	created := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	payload, err := encodeTasks([]task.Task{{ID: "1", Text: "x", CreatedAt: created, Priority: task.PriorityMedium}})
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"id":"1","text":"x","completed":false,"createdAt":"2024-06-10T09:00:00Z","priority":"Medium"}]`
	if string(payload) != want {
		t.Errorf("payload = %s\nwant      %s", payload, want)
	}
}

func TestDecodeCorruptPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "{{{"},
		{"object not array", `{"id":"1"}`},
		{"truncated", `[{"id":"1","text":"a"`},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeTasks([]byte(tt.payload))
			if got == nil || len(got) != 0 {
				t.Errorf("decodeTasks = %#v, want empty non-nil slice", got)
			}
		})
	}
}

func TestDecodeDropsInvalidRecords(t *testing.T) {
	payload := `[
		{"id":"ok","text":"Keep me","createdAt":"2024-06-10T09:00:00Z","priority":"High"},
		{"id":"","text":"no id"},
		{"id":"blank","text":""},
		{"id":"whitespace","text":" \t\n "},
		{"id":"bad-prio","text":"x","priority":"Urgent"},
		{"id":"bad-date","text":"x","dueDate":"tomorrow"},
		"just a string",
		{"id":"legacy","text":"No priority field"}
	]`
	got := decodeTasks([]byte(payload))
	if len(got) != 2 {
		t.Fatalf("kept %d tasks, want 2: %+v", len(got), got)
	}
	if got[0].ID != "ok" || got[1].ID != "legacy" {
		t.Errorf("kept ids %q, %q", got[0].ID, got[1].ID)
	}
	if got[1].Priority != task.PriorityMedium {
		t.Errorf("legacy priority = %q, want Medium", got[1].Priority)
	}
}

func TestClientCodecRoundTrip(t *testing.T) {
	last := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	in := []client.Client{{
		ID:                  "c1",
		Name:                "Acme",
		Email:               "ops@acme.test",
		Phone:               "555",
		Services:            []client.Service{client.ServiceSEO, client.ServiceBranding},
		Status:              client.StatusClient,
		ProjectStatus:       client.ProjectInProgress,
		DesignCharges:       ptr(1000.0),
		AmountPaid:          ptr(400.0),
		MonthlySubscription: ptr(99.0),
		PaymentStatus:       client.PaymentPartial,
		AssignedTo:          "emp-1",
		LastContact:         last,
		CreatedAt:           last.Add(-24 * time.Hour),
	}}

	payload, err := encodeClients(in)
	if err != nil {
		t.Fatal(err)
	}
	out := decodeClients(payload)
	if len(out) != 1 {
		t.Fatalf("decoded %d clients, want 1", len(out))
	}
	got := out[0]
	if got.Name != "Acme" || got.AssignedTo != "emp-1" || len(got.Services) != 2 {
		t.Errorf("client = %+v", got)
	}
	if got.PendingAmount() != 600 {
		t.Errorf("pending = %v, want 600", got.PendingAmount())
	}
	if !got.LastContact.Equal(last) {
		t.Errorf("last_contact = %v, want %v", got.LastContact, last)
	}
}

func TestClientDecodeDropsInvalid(t *testing.T) {
	payload := `[
		{"id":"c1","name":"Good","email":"a@b.test","status":"Client","projectStatus":"Completed","lastContact":"2024-06-01T00:00:00Z"},
		{"id":"c2","name":"Bad status","email":"a@b.test","status":"Lead","projectStatus":"Completed"},
		{"id":"c3","name":"","email":"a@b.test"},
		{"id":"c4","name":"Neg","email":"a@b.test","designCharges":-5}
	]`
	got := decodeClients([]byte(payload))
	if len(got) != 1 || got[0].ID != "c1" {
		t.Fatalf("got %+v, want only c1", got)
	}
}

func TestUserCodecKeepsPasswordHash(t *testing.T) {
	in := []user.User{{ID: "u1", Email: "a@b.test", Name: "A", PasswordHash: "$2a$hash", Role: user.RoleEmployee}}
	payload, err := encodeUsers(in)
	if err != nil {
		t.Fatal(err)
	}
	out := decodeUsers(payload)
	if len(out) != 1 || out[0].PasswordHash != "$2a$hash" || out[0].Role != user.RoleEmployee {
		t.Fatalf("got %+v", out)
	}

	// Roster entries from the browser era carry only id, name and role.
	legacy := decodeUsers([]byte(`[{"id":"7","name":"Sara","role":"Employee"},{"id":"8","name":"X","role":"Intern"}]`))
	if len(legacy) != 1 || legacy[0].Name != "Sara" {
		t.Fatalf("legacy = %+v", legacy)
	}
}
