// Package task defines the Task domain entity.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
)

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists all priorities in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Rank orders priorities for sorting: High=3, Medium=2, Low=1.
// Unknown values rank below Low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Task is a single todo item.
type Task struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id,omitempty"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Priority  Priority   `json:"priority"`
	Category  string     `json:"category,omitempty"`
}

// HasDueDate reports whether the task carries a deadline.
func (t *Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

// CreateRequest holds the fields needed to create a new task.
type CreateRequest struct {
	Text     string     `json:"text"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Priority Priority   `json:"priority,omitempty"`
	Category string     `json:"category,omitempty"`
}

// Validate trims the text, applies the default priority and checks the
// request. It mutates r so the store receives normalized input.
func (r *CreateRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	r.Category = strings.TrimSpace(r.Category)
	if r.Text == "" {
		return fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if !r.Priority.Valid() {
		return fmt.Errorf("%w: invalid priority %q", domain.ErrValidation, r.Priority)
	}
	if r.DueDate != nil && r.DueDate.IsZero() {
		r.DueDate = nil
	}
	return nil
}

// UpdateRequest is a partial update. Nil fields are left unchanged.
// ClearDueDate removes the deadline and takes precedence over DueDate.
type UpdateRequest struct {
	Text         *string    `json:"text,omitempty"`
	Completed    *bool      `json:"completed,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ClearDueDate bool       `json:"clear_due_date,omitempty"`
	Priority     *Priority  `json:"priority,omitempty"`
	Category     *string    `json:"category,omitempty"`
}

// Validate normalizes and checks the partial update.
func (r *UpdateRequest) Validate() error {
	if r.Text != nil {
		trimmed := strings.TrimSpace(*r.Text)
		if trimmed == "" {
			return fmt.Errorf("%w: text must not be empty", domain.ErrValidation)
		}
		r.Text = &trimmed
	}
	if r.Priority != nil && !r.Priority.Valid() {
		return fmt.Errorf("%w: invalid priority %q", domain.ErrValidation, *r.Priority)
	}
	if r.Category != nil {
		c := strings.TrimSpace(*r.Category)
		r.Category = &c
	}
	if r.DueDate != nil && r.DueDate.IsZero() {
		r.DueDate = nil
	}
	return nil
}

// Empty reports whether the update changes nothing.
func (r *UpdateRequest) Empty() bool {
	return r.Text == nil && r.Completed == nil && r.DueDate == nil &&
		!r.ClearDueDate && r.Priority == nil && r.Category == nil
}

// Apply copies the set fields of r onto t. ID, OwnerID and CreatedAt are
// never touched.
func (t *Task) Apply(r UpdateRequest) {
	if r.Text != nil {
		t.Text = *r.Text
	}
	if r.Completed != nil {
		t.Completed = *r.Completed
	}
	switch {
	case r.ClearDueDate:
		t.DueDate = nil
	case r.DueDate != nil:
		d := *r.DueDate
		t.DueDate = &d
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	if r.Category != nil {
		t.Category = *r.Category
	}
}
