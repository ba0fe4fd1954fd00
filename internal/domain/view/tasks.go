// Package view computes read-only projections over entity snapshots.
// Every function here is pure: inputs are never mutated and the current time
// is always passed in explicitly.
package view

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/task"
)

// Filter selects which tasks a projection keeps.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterToday   Filter = "today"
	FilterOverdue Filter = "overdue"
)

// SortKey orders a task projection.
type SortKey string

const (
	SortCreatedAt SortKey = "created_at"
	SortDueDate   SortKey = "due_date"
	SortPriority  SortKey = "priority"
)

// ParseFilter maps a query value onto a Filter. The empty string selects
// FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterToday, FilterOverdue:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown filter %q", domain.ErrValidation, s)
	}
}

// ParseSort maps a query value onto a SortKey. The empty string selects
// SortCreatedAt.
func ParseSort(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortCreatedAt, nil
	case SortCreatedAt, SortDueDate, SortPriority:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown sort key %q", domain.ErrValidation, s)
	}
}

// StartOfDay returns midnight of now's calendar day in now's location.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// DueToday reports whether t's deadline falls on now's calendar day.
func DueToday(t *task.Task, now time.Time) bool {
	if !t.HasDueDate() {
		return false
	}
	start := StartOfDay(now)
	end := start.AddDate(0, 0, 1)
	due := t.DueDate.In(now.Location())
	return !due.Before(start) && due.Before(end)
}

// Overdue reports whether t is still open and its deadline lies strictly
// before the start of today.
func Overdue(t *task.Task, now time.Time) bool {
	if t.Completed || !t.HasDueDate() {
		return false
	}
	return t.DueDate.Before(StartOfDay(now))
}

// Matches reports whether t passes filter f at time now.
func (f Filter) Matches(t *task.Task, now time.Time) bool {
	switch f {
	case FilterToday:
		return DueToday(t, now)
	case FilterOverdue:
		return Overdue(t, now)
	default:
		return true
	}
}

// ProjectTasks filters tasks and then returns a sorted copy. Sorting is
// stable, so tasks that compare equal keep their input order.
func ProjectTasks(tasks []task.Task, f Filter, key SortKey, now time.Time) ([]task.Task, error) {
	f, err := ParseFilter(string(f))
	if err != nil {
		return nil, err
	}
	key, err = ParseSort(string(key))
	if err != nil {
		return nil, err
	}

	out := make([]task.Task, 0, len(tasks))
	for i := range tasks {
		if f.Matches(&tasks[i], now) {
			out = append(out, tasks[i])
		}
	}

	switch key {
	case SortDueDate:
		slices.SortStableFunc(out, compareDueDate)
	case SortPriority:
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
		})
	default:
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return out, nil
}

// compareDueDate orders ascending by deadline with undated tasks last.
func compareDueDate(a, b task.Task) int {
	ah, bh := a.HasDueDate(), b.HasDueDate()
	switch {
	case ah && bh:
		return a.DueDate.Compare(*b.DueDate)
	case ah:
		return -1
	case bh:
		return 1
	default:
		return 0
	}
}
