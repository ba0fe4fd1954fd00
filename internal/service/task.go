package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/summary"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/task"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/view"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/middleware"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/cache"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/database"
)

// sharedTaskOwner keys the task snapshot when the store is not scoped per
// caller.
const sharedTaskOwner = "all"

// TaskService handles task reads (views, summaries) and task mutations.
type TaskService struct {
	store  database.TaskStore
	snaps  *Snapshots
	coord  *Coordinator
	loc    *time.Location
	now    func() time.Time
	shared bool
}

// NewTaskService creates a TaskService. "today" and "overdue" are evaluated
// in loc. shared must be true when the store returns every task regardless
// of caller, so that all callers use one snapshot.
func NewTaskService(store database.TaskStore, snaps *Snapshots, coord *Coordinator, loc *time.Location, shared bool) *TaskService {
	if loc == nil {
		loc = time.Local
	}
	return &TaskService{store: store, snaps: snaps, coord: coord, loc: loc, now: time.Now, shared: shared}
}

func (s *TaskService) key(ctx context.Context) string {
	if s.shared {
		return cache.TaskKey(sharedTaskOwner)
	}
	if u := middleware.UserFromContext(ctx); u != nil {
		return cache.TaskKey(u.ID)
	}
	return cache.TaskKey("")
}

// snapshot returns the caller's task collection. It is shared and must not
// be modified.
func (s *TaskService) snapshot(ctx context.Context) ([]task.Task, error) {
	return loadSnapshot(ctx, s.snaps, s.key(ctx), s.store.ListTasks)
}

// List returns the caller's tasks filtered and sorted.
func (s *TaskService) List(ctx context.Context, filter, sortKey string) ([]task.Task, error) {
	f, err := view.ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	k, err := view.ParseSort(sortKey)
	if err != nil {
		return nil, err
	}
	tasks, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return view.ProjectTasks(tasks, f, k, s.now().In(s.loc))
}

// Summary digests the caller's tasks.
func (s *TaskService) Summary(ctx context.Context) (summary.Digest, error) {
	tasks, err := s.snapshot(ctx)
	if err != nil {
		return summary.Digest{}, err
	}
	return summary.Build(tasks, s.now().In(s.loc)), nil
}

// Get returns one task from the caller's snapshot.
func (s *TaskService) Get(ctx context.Context, id string) (*task.Task, error) {
	tasks, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			t := tasks[i]
			return &t, nil
		}
	}
	return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
}

// Add validates and creates a task.
func (s *TaskService) Add(ctx context.Context, req task.CreateRequest) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *task.Task
	err := s.coord.Apply(ctx, s.mutation(ctx, "", OpCreate), func(ctx context.Context) (string, error) {
		t, err := s.store.CreateTask(ctx, req)
		if err != nil {
			return "", err
		}
		created = t
		return t.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Toggle flips the completed flag. The current value comes from the
// caller's snapshot and the flipped value is written unconditionally, so
// two concurrent toggles from different sessions can cancel out. The
// lookup runs inside the mutation so a missing task is reported like any
// other failed write.
func (s *TaskService) Toggle(ctx context.Context, id string) (*task.Task, error) {
	var updated *task.Task
	err := s.coord.Apply(ctx, s.mutation(ctx, id, OpUpdate), func(ctx context.Context) (string, error) {
		current, err := s.Get(ctx, id)
		if err != nil {
			return "", err
		}
		done := !current.Completed
		t, err := s.store.UpdateTask(ctx, id, task.UpdateRequest{Completed: &done})
		if err != nil {
			return "", err
		}
		updated = t
		return t.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// EditText replaces the text of a task. Text that is blank after trimming
// is rejected and the store is not called.
func (s *TaskService) EditText(ctx context.Context, id, text string) (*task.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text must not be empty", domain.ErrValidation)
	}
	return s.update(ctx, id, task.UpdateRequest{Text: &text})
}

// Update applies a partial update.
func (s *TaskService) Update(ctx context.Context, id string, req task.UpdateRequest) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	return s.update(ctx, id, req)
}

func (s *TaskService) update(ctx context.Context, id string, req task.UpdateRequest) (*task.Task, error) {
	var updated *task.Task
	err := s.coord.Apply(ctx, s.mutation(ctx, id, OpUpdate), func(ctx context.Context) (string, error) {
		t, err := s.store.UpdateTask(ctx, id, req)
		if err != nil {
			return "", err
		}
		updated = t
		return t.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.coord.Apply(ctx, s.mutation(ctx, id, OpDelete), func(ctx context.Context) (string, error) {
		return id, s.store.DeleteTask(ctx, id)
	})
}

func (s *TaskService) mutation(ctx context.Context, id, op string) Mutation {
	return Mutation{Kind: KindTask, EntityID: id, Op: op, Keys: []string{s.key(ctx)}}
}
