// Package summary reduces a task collection into a short digest.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/task"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/view"
)

const (
	// EmptyMessage is returned for a collection with no tasks at all.
	EmptyMessage = "No tasks yet. Time to plan your day!"
	// AllClearMessage is returned when every task is completed.
	AllClearMessage = "All clear. Great job clearing your tasks!"
)

// Digest carries the counts behind a summary message.
type Digest struct {
	Message   string `json:"message"`
	Total     int    `json:"total"`
	Pending   int    `json:"pending"`
	Completed int    `json:"completed"`
	DueToday  int    `json:"due_today"`
	Overdue   int    `json:"overdue"`
	High      int    `json:"high_priority"`
	FocusID   string `json:"focus_id,omitempty"`
}

// Summarize returns only the message of Build.
func Summarize(tasks []task.Task, now time.Time) string {
	return Build(tasks, now).Message
}

// Build counts pending work in tasks and renders the digest message.
func Build(tasks []task.Task, now time.Time) Digest {
	d := Digest{Total: len(tasks)}
	if len(tasks) == 0 {
		d.Message = EmptyMessage
		return d
	}

	var high, earliest, first *task.Task
	for i := range tasks {
		t := &tasks[i]
		if t.Completed {
			d.Completed++
			continue
		}
		d.Pending++
		if first == nil {
			first = t
		}
		if view.DueToday(t, now) {
			d.DueToday++
		}
		if view.Overdue(t, now) {
			d.Overdue++
		}
		if t.Priority == task.PriorityHigh {
			d.High++
			if high == nil {
				high = t
			}
		}
		if t.HasDueDate() && (earliest == nil || t.DueDate.Before(*earliest.DueDate)) {
			earliest = t
		}
	}

	if d.Pending == 0 {
		d.Message = AllClearMessage
		return d
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d pending %s.", d.Pending, plural(d.Pending, "task", "tasks"))
	if d.DueToday > 0 {
		fmt.Fprintf(&b, " %d due today.", d.DueToday)
	}
	if d.Overdue > 0 {
		fmt.Fprintf(&b, " %d overdue.", d.Overdue)
	}
	if d.High > 0 {
		fmt.Fprintf(&b, " %d high priority.", d.High)
	}

	switch {
	case high != nil:
		fmt.Fprintf(&b, " Top priority: \"%s\".", strings.TrimSpace(high.Text))
		d.FocusID = high.ID
	case earliest != nil:
		fmt.Fprintf(&b, " Next up: \"%s\".", strings.TrimSpace(earliest.Text))
		d.FocusID = earliest.ID
	default:
		fmt.Fprintf(&b, " Next up: \"%s\".", strings.TrimSpace(first.Text))
		d.FocusID = first.ID
	}
	d.Message = b.String()
	return d
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
