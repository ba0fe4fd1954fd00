package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/middleware"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/cache"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/database"
)

// EmployeeService manages the employee roster that backs client assignment.
type EmployeeService struct {
	users   database.UserStore
	clients database.ClientStore
	auth    *AuthService
	snaps   *Snapshots
	coord   *Coordinator
}

// NewEmployeeService creates an EmployeeService. New accounts are created
// through auth so passwords are hashed the same way as on signup.
func NewEmployeeService(users database.UserStore, clients database.ClientStore, auth *AuthService, snaps *Snapshots, coord *Coordinator) *EmployeeService {
	return &EmployeeService{users: users, clients: clients, auth: auth, snaps: snaps, coord: coord}
}

// List returns every account with the employee role.
func (s *EmployeeService) List(ctx context.Context) ([]user.User, error) {
	users, err := loadSnapshot(ctx, s.snaps, cache.KeyEmployees, s.users.ListUsers)
	if err != nil {
		return nil, err
	}
	out := make([]user.User, 0, len(users))
	for i := range users {
		if users[i].Role == user.RoleEmployee {
			out = append(out, users[i])
		}
	}
	return out, nil
}

// Get returns one employee.
func (s *EmployeeService) Get(ctx context.Context, id string) (*user.User, error) {
	employees, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range employees {
		if employees[i].ID == id {
			return &employees[i], nil
		}
	}
	return nil, fmt.Errorf("employee %s: %w", id, domain.ErrNotFound)
}

// Create registers a new employee account. Admin only.
func (s *EmployeeService) Create(ctx context.Context, req user.CreateRequest) (*user.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	req.Role = user.RoleEmployee

	var created *user.User
	err := s.coord.Apply(ctx, s.mutation("", OpCreate, cache.KeyEmployees), func(ctx context.Context) (string, error) {
		u, err := s.auth.CreateUser(ctx, &req)
		if err != nil {
			return "", err
		}
		created = u
		return u.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Delete removes an employee and unassigns their clients first, so no
// client is left pointing at a missing employee. Admin only.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if caller := middleware.UserFromContext(ctx); caller.ID == id {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrValidation)
	}

	m := s.mutation(id, OpDelete, cache.KeyEmployees, cache.KeyClients)
	return s.coord.Apply(ctx, m, func(ctx context.Context) (string, error) {
		if _, err := s.Get(ctx, id); err != nil {
			return "", err
		}
		n, err := s.clients.UnassignClients(ctx, id)
		if err != nil {
			return "", fmt.Errorf("unassign clients: %w", err)
		}
		if n > 0 {
			slog.Info("unassigned clients of deleted employee", "employee_id", id, "count", n)
		}
		return id, s.users.DeleteUser(ctx, id)
	})
}

func (s *EmployeeService) mutation(id, op string, keys ...string) Mutation {
	return Mutation{Kind: KindEmployee, EntityID: id, Op: op, Keys: keys}
}
