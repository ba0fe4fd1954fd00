package view

import (
	"errors"
	"testing"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/task"
)

var now = time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	v := now.Add(d)
	return &v
}

func texts(ts []task.Task) []string {
	out := make([]string, len(ts))
	for i := range ts {
		out[i] = ts[i].Text
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func fixture() []task.Task {
	base := now.Add(-72 * time.Hour)
	return []task.Task{
		{ID: "1", Text: "undated", CreatedAt: base, Priority: task.PriorityLow},
		{ID: "2", Text: "late", CreatedAt: base.Add(time.Hour), DueDate: at(-48 * time.Hour), Priority: task.PriorityHigh},
		{ID: "3", Text: "late but done", CreatedAt: base.Add(2 * time.Hour), DueDate: at(-30 * time.Hour), Completed: true, Priority: task.PriorityMedium},
		{ID: "4", Text: "this morning", CreatedAt: base.Add(3 * time.Hour), DueDate: at(-10 * time.Hour), Priority: task.PriorityMedium},
		{ID: "5", Text: "tonight", CreatedAt: base.Add(4 * time.Hour), DueDate: at(8 * time.Hour), Priority: task.PriorityHigh},
		{ID: "6", Text: "later", CreatedAt: base.Add(5 * time.Hour), DueDate: at(96 * time.Hour), Priority: task.PriorityLow},
		{ID: "7", Text: "undated two", CreatedAt: base.Add(6 * time.Hour), Priority: task.PriorityMedium},
	}
}

func TestProjectTasks_Overdue(t *testing.T) {
	got, err := ProjectTasks(fixture(), FilterOverdue, SortCreatedAt, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	start := StartOfDay(now)
	for _, tk := range got {
		if tk.DueDate == nil {
			t.Fatalf("undated task %q in overdue view", tk.Text)
		}
		if !tk.DueDate.Before(start) || tk.Completed {
			t.Fatalf("task %q does not belong in overdue view", tk.Text)
		}
	}
	if want := []string{"late"}; !equal(texts(got), want) {
		t.Fatalf("overdue = %v, want %v", texts(got), want)
	}
}

func TestProjectTasks_Today(t *testing.T) {
	got, err := ProjectTasks(fixture(), FilterToday, SortDueDate, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"this morning", "tonight"}; !equal(texts(got), want) {
		t.Fatalf("today = %v, want %v", texts(got), want)
	}
}

func TestProjectTasks_DueDateNullsLast(t *testing.T) {
	got, err := ProjectTasks(fixture(), FilterAll, SortDueDate, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seenUndated := false
	var prev *time.Time
	for _, tk := range got {
		if tk.DueDate == nil {
			seenUndated = true
			continue
		}
		if seenUndated {
			t.Fatalf("dated task %q after an undated one", tk.Text)
		}
		if prev != nil && tk.DueDate.Before(*prev) {
			t.Fatalf("due dates not ascending at %q", tk.Text)
		}
		prev = tk.DueDate
	}
	// stable: undated tasks keep input order
	if n := len(got); got[n-2].Text != "undated" || got[n-1].Text != "undated two" {
		t.Fatalf("undated tail = %v", texts(got[n-2:]))
	}
}

func TestProjectTasks_CreatedAtDescending(t *testing.T) {
	got, err := ProjectTasks(fixture(), "", "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 7 || got[0].ID != "7" || got[6].ID != "1" {
		t.Fatalf("unexpected order: %v", texts(got))
	}
}

func TestProjectTasks_PriorityStable(t *testing.T) {
	got, err := ProjectTasks(fixture(), FilterAll, SortPriority, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"late", "tonight", "late but done", "this morning", "undated two", "undated", "later"}
	if !equal(texts(got), want) {
		t.Fatalf("priority order = %v, want %v", texts(got), want)
	}
}

func TestProjectTasks_DoesNotMutateInput(t *testing.T) {
	in := fixture()
	if _, err := ProjectTasks(in, FilterAll, SortDueDate, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, tk := range fixture() {
		if in[i].ID != tk.ID {
			t.Fatalf("input reordered at %d", i)
		}
	}
}

func TestProjectTasks_UnknownNames(t *testing.T) {
	if _, err := ProjectTasks(nil, "someday", SortCreatedAt, now); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("filter: expected ErrValidation, got %v", err)
	}
	if _, err := ProjectTasks(nil, FilterAll, "alpha", now); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("sort: expected ErrValidation, got %v", err)
	}
}

func TestProjectTasks_SyncFollowUpScenario(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Text: "Follow up", DueDate: at(48 * time.Hour), CreatedAt: now},
		{ID: "b", Text: "Sync", DueDate: at(0), CreatedAt: now},
	}

	today, err := ProjectTasks(tasks, FilterToday, SortCreatedAt, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"Sync"}; !equal(texts(today), want) {
		t.Fatalf("today = %v, want %v", texts(today), want)
	}

	overdue, err := ProjectTasks(tasks, FilterOverdue, SortCreatedAt, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(overdue) != 0 {
		t.Fatalf("overdue = %v, want none", texts(overdue))
	}
}

func TestDueToday_UsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 2024-06-12 15:00 UTC; the task is due at 06:00 local the same day.
	local := time.Date(2024, 6, 13, 1, 0, 0, 0, loc)
	due := time.Date(2024, 6, 12, 20, 0, 0, 0, time.UTC)
	tk := task.Task{Text: "x", DueDate: &due}
	if !DueToday(&tk, local) {
		t.Fatal("expected task due today in the caller's zone")
	}
	if DueToday(&tk, local.AddDate(0, 0, -1)) {
		t.Fatal("did not expect task due the previous day")
	}
}
