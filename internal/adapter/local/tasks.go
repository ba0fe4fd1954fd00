package local

import (
	"context"
	"fmt"
	"slices"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/task"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/middleware"
)

func taskID(t *task.Task) string { return t.ID }

// ListTasks returns every task regardless of owner.
func (s *Store) ListTasks(_ context.Context) ([]task.Task, error) {
	return s.tasks.snapshot(), nil
}

// GetTask returns one task.
func (s *Store) GetTask(_ context.Context, id string) (*task.Task, error) {
	t, ok := s.tasks.find(func(t *task.Task) bool { return t.ID == id })
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

// CreateTask appends a task. req must already be validated.
func (s *Store) CreateTask(ctx context.Context, req task.CreateRequest) (*task.Task, error) {
	t := task.Task{
		ID:        s.newID(),
		Text:      req.Text,
		CreatedAt: s.now(),
		Priority:  req.Priority,
		Category:  req.Category,
	}
	if req.DueDate != nil {
		d := *req.DueDate
		t.DueDate = &d
	}
	if u := middleware.UserFromContext(ctx); u != nil {
		t.OwnerID = u.ID
	}

	err := s.tasks.mutate(ctx, s.slots, func(items []task.Task) ([]task.Task, error) {
		return append(items, t), nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask applies a partial update.
func (s *Store) UpdateTask(ctx context.Context, id string, req task.UpdateRequest) (*task.Task, error) {
	var updated task.Task
	err := s.tasks.mutate(ctx, s.slots, func(items []task.Task) ([]task.Task, error) {
		i := indexOf(items, taskID, id)
		if i < 0 {
			return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		items[i].Apply(req)
		updated = items[i]
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.tasks.mutate(ctx, s.slots, func(items []task.Task) ([]task.Task, error) {
		i := indexOf(items, taskID, id)
		if i < 0 {
			return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		return slices.Delete(items, i, i+1), nil
	})
}
