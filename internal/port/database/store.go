// Package database defines the entity store ports.
//
// Two implementations exist: adapter/local keeps whole collections in named
// slots, adapter/postgres keeps one row per entity and scopes every call to
// the authenticated caller.
package database

import (
	"context"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/client"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/task"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
)

// TaskStore holds todo items. Update and Delete fail with domain.ErrNotFound
// for unknown ids.
type TaskStore interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	CreateTask(ctx context.Context, req task.CreateRequest) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, req task.UpdateRequest) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// ClientStore holds CRM records. Every successful update stamps LastContact.
type ClientStore interface {
	ListClients(ctx context.Context) ([]client.Client, error)
	GetClient(ctx context.Context, id string) (*client.Client, error)
	CreateClient(ctx context.Context, req client.CreateRequest) (*client.Client, error)
	UpdateClient(ctx context.Context, id string, req client.UpdateRequest) (*client.Client, error)
	DeleteClient(ctx context.Context, id string) error
	// UnassignClients clears AssignedTo on every client assigned to userID
	// and returns how many were changed.
	UnassignClients(ctx context.Context, userID string) (int, error)
}

// UserStore holds accounts. Employees are users with user.RoleEmployee.
type UserStore interface {
	ListUsers(ctx context.Context) ([]user.User, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	CreateUser(ctx context.Context, u *user.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error
}

// Store is the full entity store.
type Store interface {
	TaskStore
	ClientStore
	UserStore
}
