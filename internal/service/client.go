package service

import (
	"context"
	"fmt"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/client"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/view"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/middleware"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/cache"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/database"
)

// ClientService handles CRM reads and writes. Admins see and manage every
// client; employees see and edit only the clients assigned to them.
type ClientService struct {
	store     database.ClientStore
	snaps     *Snapshots
	coord     *Coordinator
	employees *EmployeeService
}

// NewClientService creates a ClientService. employees resolves assignees.
func NewClientService(store database.ClientStore, snaps *Snapshots, coord *Coordinator, employees *EmployeeService) *ClientService {
	return &ClientService{store: store, snaps: snaps, coord: coord, employees: employees}
}

func (s *ClientService) snapshot(ctx context.Context) ([]client.Client, error) {
	return loadSnapshot(ctx, s.snaps, cache.KeyClients, s.store.ListClients)
}

func (s *ClientService) visible(ctx context.Context) ([]client.Client, error) {
	caller := middleware.UserFromContext(ctx)
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	clients, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return view.VisibleTo(clients, caller.ID, caller.IsAdmin()), nil
}

// List returns the caller's visible clients filtered and sorted by q.
func (s *ClientService) List(ctx context.Context, q view.ClientQuery) ([]client.Client, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	clients, err := s.visible(ctx)
	if err != nil {
		return nil, err
	}
	return view.ProjectClients(clients, q)
}

// Stats summarizes the caller's visible clients.
func (s *ClientService) Stats(ctx context.Context) (view.ClientStats, error) {
	clients, err := s.visible(ctx)
	if err != nil {
		return view.ClientStats{}, err
	}
	return view.Stats(clients), nil
}

// Get returns one visible client. Clients outside the caller's view read
// as not found.
func (s *ClientService) Get(ctx context.Context, id string) (*client.Client, error) {
	clients, err := s.visible(ctx)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].ID == id {
			return &clients[i], nil
		}
	}
	return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
}

// Create adds a client. Admin only.
func (s *ClientService) Create(ctx context.Context, req client.CreateRequest) (*client.Client, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, req.AssignedTo); err != nil {
		return nil, err
	}

	var created *client.Client
	err := s.coord.Apply(ctx, s.mutation("", OpCreate), func(ctx context.Context) (string, error) {
		c, err := s.store.CreateClient(ctx, req)
		if err != nil {
			return "", err
		}
		created = c
		return c.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies a partial edit. Employees may edit their own clients but
// not reassign them.
func (s *ClientService) Update(ctx context.Context, id string, req client.UpdateRequest) (*client.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *client.Client
	err := s.coord.Apply(ctx, s.mutation(id, OpUpdate), func(ctx context.Context) (string, error) {
		if _, err := s.Get(ctx, id); err != nil {
			return "", err
		}
		if req.AssignedTo != nil {
			if err := requireAdmin(ctx); err != nil {
				return "", fmt.Errorf("reassign client: %w", err)
			}
			if err := s.checkAssignee(ctx, *req.AssignedTo); err != nil {
				return "", err
			}
		}
		c, err := s.store.UpdateClient(ctx, id, req)
		if err != nil {
			return "", err
		}
		updated = c
		return c.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateStatus changes the relationship and project stages.
func (s *ClientService) UpdateStatus(ctx context.Context, id string, req client.StatusRequest) (*client.Client, error) {
	if req.Status == "" && req.ProjectStatus == "" {
		return nil, fmt.Errorf("%w: status is required", domain.ErrValidation)
	}
	return s.Update(ctx, id, req.Update())
}

// Delete removes a client. Admin only.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.coord.Apply(ctx, s.mutation(id, OpDelete), func(ctx context.Context) (string, error) {
		return id, s.store.DeleteClient(ctx, id)
	})
}

func (s *ClientService) checkAssignee(ctx context.Context, id string) error {
	if id == "" || s.employees == nil {
		return nil
	}
	if _, err := s.employees.Get(ctx, id); err != nil {
		return fmt.Errorf("%w: unknown employee %s", domain.ErrValidation, id)
	}
	return nil
}

func (s *ClientService) mutation(id, op string) Mutation {
	return Mutation{Kind: KindClient, EntityID: id, Op: op, Keys: []string{cache.KeyClients}}
}

func requireAdmin(ctx context.Context) error {
	caller := middleware.UserFromContext(ctx)
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	return nil
}
