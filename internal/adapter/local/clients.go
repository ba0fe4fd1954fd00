package local

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/client"
)

func clientID(c *client.Client) string { return c.ID }

func newClient(id string, req client.CreateRequest, created, lastContact time.Time) client.Client {
	return client.Client{
		ID:                  id,
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		Address:             req.Address,
		Services:            slices.Clone(req.Services),
		Status:              req.Status,
		ProjectStatus:       req.ProjectStatus,
		DesignCharges:       req.DesignCharges,
		AmountPaid:          req.AmountPaid,
		MonthlySubscription: req.MonthlySubscription,
		PaymentStatus:       req.PaymentStatus,
		AssignedTo:          req.AssignedTo,
		LastContact:         lastContact,
		CreatedAt:           created,
	}
}

// ListClients returns every client.
func (s *Store) ListClients(_ context.Context) ([]client.Client, error) {
	return s.clients.snapshot(), nil
}

// GetClient returns one client.
func (s *Store) GetClient(_ context.Context, id string) (*client.Client, error) {
	c, ok := s.clients.find(func(c *client.Client) bool { return c.ID == id })
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

// CreateClient appends a client. req must already be validated.
func (s *Store) CreateClient(ctx context.Context, req client.CreateRequest) (*client.Client, error) {
	now := s.now()
	c := newClient(s.newID(), req, now, now)
	err := s.clients.mutate(ctx, s.slots, func(items []client.Client) ([]client.Client, error) {
		return append(items, c), nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateClient applies a partial update and stamps LastContact.
func (s *Store) UpdateClient(ctx context.Context, id string, req client.UpdateRequest) (*client.Client, error) {
	var updated client.Client
	err := s.clients.mutate(ctx, s.slots, func(items []client.Client) ([]client.Client, error) {
		i := indexOf(items, clientID, id)
		if i < 0 {
			return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
		}
		items[i].Apply(req)
		items[i].LastContact = s.now()
		updated = items[i]
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteClient removes a client.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	return s.clients.mutate(ctx, s.slots, func(items []client.Client) ([]client.Client, error) {
		i := indexOf(items, clientID, id)
		if i < 0 {
			return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
		}
		return slices.Delete(items, i, i+1), nil
	})
}

// UnassignClients clears the assignment of every client held by userID.
// Nothing is written when no client matches.
func (s *Store) UnassignClients(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	n := 0
	err := s.clients.mutate(ctx, s.slots, func(items []client.Client) ([]client.Client, error) {
		now := s.now()
		for i := range items {
			if items[i].AssignedTo == userID {
				items[i].AssignedTo = ""
				items[i].LastContact = now
				n++
			}
		}
		if n == 0 {
			return nil, errNoChange
		}
		return items, nil
	})
	if errors.Is(err, errNoChange) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
