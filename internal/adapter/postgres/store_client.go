package postgres

import (
	"context"
	"fmt"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/client"
)

const clientColumns = `id::text, name, email, phone, address, services, status, project_status,
	design_charges, amount_paid, monthly_subscription, payment_status,
	COALESCE(assigned_to::text, ''), last_contact, created_at`

func scanClient(row scannable) (client.Client, error) {
	var (
		c        client.Client
		services []string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &services, &c.Status, &c.ProjectStatus,
		&c.DesignCharges, &c.AmountPaid, &c.MonthlySubscription, &c.PaymentStatus,
		&c.AssignedTo, &c.LastContact, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	c.Services = make([]client.Service, len(services))
	for i, s := range services {
		c.Services[i] = client.Service(s)
	}
	return c, nil
}

func serviceStrings(services []client.Service) []string {
	out := make([]string, len(services))
	for i, s := range services {
		out[i] = string(s)
	}
	return out
}

// ListClients returns every client. Visibility per role is decided by the
// service layer.
func (s *Store) ListClients(ctx context.Context) ([]client.Client, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []client.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return orEmpty(clients), rows.Err()
}

// GetClient returns one client.
func (s *Store) GetClient(ctx context.Context, id string) (*client.Client, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if err := checkID("client", id); err != nil {
		return nil, err
	}

	c, err := scanClient(s.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundWrap(err, "get client %s", id)
	}
	return &c, nil
}

// CreateClient inserts a client.
func (s *Store) CreateClient(ctx context.Context, req client.CreateRequest) (*client.Client, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	if req.AssignedTo != "" {
		if err := checkID("employee", req.AssignedTo); err != nil {
			return nil, err
		}
	}

	var c client.Client
	err := s.write(func() error {
		var scanErr error
		c, scanErr = scanClient(s.pool.QueryRow(ctx,
			`INSERT INTO clients (name, email, phone, address, services, status, project_status,
				design_charges, amount_paid, monthly_subscription, payment_status, assigned_to)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 RETURNING `+clientColumns,
			req.Name, req.Email, req.Phone, req.Address, serviceStrings(req.Services), req.Status, req.ProjectStatus,
			req.DesignCharges, req.AmountPaid, req.MonthlySubscription, req.PaymentStatus, nullIfEmpty(req.AssignedTo)))
		return assigneeErr(scanErr)
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &c, nil
}

// UpdateClient applies a partial update and stamps last_contact.
func (s *Store) UpdateClient(ctx context.Context, id string, req client.UpdateRequest) (*client.Client, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	if err := checkID("client", id); err != nil {
		return nil, err
	}

	var services []string
	if req.Services != nil {
		services = serviceStrings(req.Services)
	}
	// $13 distinguishes "leave assignment" (false) from "set it", where an
	// empty $14 clears it.
	setAssignee := req.AssignedTo != nil
	var assignee *string
	if setAssignee {
		assignee = nullIfEmpty(*req.AssignedTo)
		if assignee != nil {
			if err := checkID("employee", *assignee); err != nil {
				return nil, err
			}
		}
	}

	var c client.Client
	err := s.write(func() error {
		var scanErr error
		c, scanErr = scanClient(s.pool.QueryRow(ctx,
			`UPDATE clients SET
				name                 = COALESCE($2, name),
				email                = COALESCE($3, email),
				phone                = COALESCE($4, phone),
				address              = COALESCE($5, address),
				services             = COALESCE($6, services),
				status               = COALESCE($7, status),
				project_status       = COALESCE($8, project_status),
				design_charges       = COALESCE($9, design_charges),
				amount_paid          = COALESCE($10, amount_paid),
				monthly_subscription = COALESCE($11, monthly_subscription),
				payment_status       = COALESCE($12, payment_status),
				assigned_to          = CASE WHEN $13 THEN $14::uuid ELSE assigned_to END,
				last_contact         = now()
			 WHERE id = $1
			 RETURNING `+clientColumns,
			id, req.Name, req.Email, req.Phone, req.Address, services, req.Status, req.ProjectStatus,
			req.DesignCharges, req.AmountPaid, req.MonthlySubscription, req.PaymentStatus,
			setAssignee, assignee))
		if scanErr != nil {
			return notFoundWrap(assigneeErr(scanErr), "update client %s", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteClient removes a client.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	if _, err := callerID(ctx); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if err := checkID("client", id); err != nil {
		return err
	}

	return s.write(func() error {
		tag, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
		return execExpectOne(tag, err, "delete client %s", id)
	})
}

// UnassignClients clears assigned_to for every client held by userID.
func (s *Store) UnassignClients(ctx context.Context, userID string) (int, error) {
	if _, err := callerID(ctx); err != nil {
		return 0, fmt.Errorf("unassign clients: %w", err)
	}
	if checkID("employee", userID) != nil {
		return 0, nil
	}

	var n int
	err := s.write(func() error {
		tag, err := s.pool.Exec(ctx,
			`UPDATE clients SET assigned_to = NULL, last_contact = now() WHERE assigned_to = $1`, userID)
		if err != nil {
			return fmt.Errorf("unassign clients: %w", err)
		}
		n = int(tag.RowsAffected())
		return nil
	})
	return n, err
}
