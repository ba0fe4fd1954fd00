package postgres

import (
	"context"
	"fmt"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/task"
)

const taskColumns = `id::text, user_id::text, text, completed, created_at, due_date, priority, category`

func scanTask(row scannable) (task.Task, error) {
	var t task.Task
	err := row.Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &t.CreatedAt, &t.DueDate, &t.Priority, &t.Category)
	return t, err
}

// ListTasks returns the caller's tasks, newest first.
func (s *Store) ListTasks(ctx context.Context) ([]task.Task, error) {
	owner, err := callerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM todos WHERE user_id = $1 ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return orEmpty(tasks), rows.Err()
}

// GetTask returns one of the caller's tasks.
func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	owner, err := callerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if err := checkID("task", id); err != nil {
		return nil, err
	}

	t, err := scanTask(s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM todos WHERE id = $1 AND user_id = $2`, id, owner))
	if err != nil {
		return nil, notFoundWrap(err, "get task %s", id)
	}
	return &t, nil
}

// CreateTask inserts a task owned by the caller.
func (s *Store) CreateTask(ctx context.Context, req task.CreateRequest) (*task.Task, error) {
	owner, err := callerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	var t task.Task
	err = s.write(func() error {
		var scanErr error
		t, scanErr = scanTask(s.pool.QueryRow(ctx,
			`INSERT INTO todos (user_id, text, due_date, priority, category)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING `+taskColumns,
			owner, req.Text, req.DueDate, req.Priority, req.Category))
		return scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &t, nil
}

// UpdateTask applies a partial update to one of the caller's tasks.
func (s *Store) UpdateTask(ctx context.Context, id string, req task.UpdateRequest) (*task.Task, error) {
	owner, err := callerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if err := checkID("task", id); err != nil {
		return nil, err
	}

	var t task.Task
	err = s.write(func() error {
		var scanErr error
		t, scanErr = scanTask(s.pool.QueryRow(ctx,
			`UPDATE todos SET
				text      = COALESCE($3, text),
				completed = COALESCE($4, completed),
				due_date  = CASE WHEN $5 THEN NULL ELSE COALESCE($6, due_date) END,
				priority  = COALESCE($7, priority),
				category  = COALESCE($8, category)
			 WHERE id = $1 AND user_id = $2
			 RETURNING `+taskColumns,
			id, owner, req.Text, req.Completed, req.ClearDueDate, req.DueDate, req.Priority, req.Category))
		if scanErr != nil {
			return notFoundWrap(scanErr, "update task %s", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask removes one of the caller's tasks.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	owner, err := callerID(ctx)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if err := checkID("task", id); err != nil {
		return err
	}

	return s.write(func() error {
		tag, err := s.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, owner)
		return execExpectOne(tag, err, "delete task %s", id)
	})
}
