package local

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/client"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/task"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/slot"
)

// Persisted layout: one JSON array per slot, timestamps as RFC 3339 strings.

type taskRecord struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id,omitempty"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"createdAt"`
	DueDate   string `json:"dueDate,omitempty"`
	Priority  string `json:"priority"`
	Category  string `json:"category,omitempty"`
}

type clientRecord struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Email               string   `json:"email"`
	Phone               string   `json:"phone,omitempty"`
	Address             string   `json:"address,omitempty"`
	Services            []string `json:"services,omitempty"`
	Status              string   `json:"status"`
	ProjectStatus       string   `json:"projectStatus"`
	DesignCharges       *float64 `json:"designCharges,omitempty"`
	AmountPaid          *float64 `json:"amountPaid,omitempty"`
	MonthlySubscription *float64 `json:"monthlySubscription,omitempty"`
	PaymentStatus       string   `json:"paymentStatus,omitempty"`
	AssignedTo          string   `json:"assignedTo,omitempty"`
	LastContact         string   `json:"lastContact"`
	CreatedAt           string   `json:"createdAt,omitempty"`
}

type userRecord struct {
	ID           string `json:"id"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name"`
	PasswordHash string `json:"password_hash,omitempty"`
	Role         string `json:"role"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func encodeTasks(tasks []task.Task) ([]byte, error) {
	recs := make([]taskRecord, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		r := taskRecord{
			ID:        t.ID,
			OwnerID:   t.OwnerID,
			Text:      t.Text,
			Completed: t.Completed,
			CreatedAt: formatTime(t.CreatedAt),
			Priority:  string(t.Priority),
			Category:  t.Category,
		}
		if t.HasDueDate() {
			r.DueDate = formatTime(*t.DueDate)
		}
		recs = append(recs, r)
	}
	return json.Marshal(recs)
}

func (r *taskRecord) decode() (task.Task, error) {
	if r.ID == "" {
		return task.Task{}, fmt.Errorf("missing id")
	}
	if strings.TrimSpace(r.Text) == "" {
		return task.Task{}, fmt.Errorf("missing text")
	}
	p := task.Priority(r.Priority)
	if p == "" {
		p = task.PriorityMedium
	}
	if !p.Valid() {
		return task.Task{}, fmt.Errorf("invalid priority %q", r.Priority)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return task.Task{}, fmt.Errorf("createdAt: %w", err)
	}
	t := task.Task{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Text:      r.Text,
		Completed: r.Completed,
		CreatedAt: created,
		Priority:  p,
		Category:  r.Category,
	}
	if r.DueDate != "" {
		due, err := parseTime(r.DueDate)
		if err != nil {
			return task.Task{}, fmt.Errorf("dueDate: %w", err)
		}
		t.DueDate = &due
	}
	return t, nil
}

func encodeClients(clients []client.Client) ([]byte, error) {
	recs := make([]clientRecord, 0, len(clients))
	for i := range clients {
		c := &clients[i]
		services := make([]string, len(c.Services))
		for j, s := range c.Services {
			services[j] = string(s)
		}
		recs = append(recs, clientRecord{
			ID:                  c.ID,
			Name:                c.Name,
			Email:               c.Email,
			Phone:               c.Phone,
			Address:             c.Address,
			Services:            services,
			Status:              string(c.Status),
			ProjectStatus:       string(c.ProjectStatus),
			DesignCharges:       c.DesignCharges,
			AmountPaid:          c.AmountPaid,
			MonthlySubscription: c.MonthlySubscription,
			PaymentStatus:       string(c.PaymentStatus),
			AssignedTo:          c.AssignedTo,
			LastContact:         formatTime(c.LastContact),
			CreatedAt:           formatTime(c.CreatedAt),
		})
	}
	return json.Marshal(recs)
}

func (r *clientRecord) decode() (client.Client, error) {
	if r.ID == "" {
		return client.Client{}, fmt.Errorf("missing id")
	}
	services := make([]client.Service, len(r.Services))
	for i, s := range r.Services {
		services[i] = client.Service(s)
	}
	// Reuse request validation for the enum and amount checks.
	req := client.CreateRequest{
		Name:                r.Name,
		Email:               r.Email,
		Phone:               r.Phone,
		Address:             r.Address,
		Services:            services,
		Status:              client.Status(r.Status),
		ProjectStatus:       client.ProjectStatus(r.ProjectStatus),
		DesignCharges:       r.DesignCharges,
		AmountPaid:          r.AmountPaid,
		MonthlySubscription: r.MonthlySubscription,
		PaymentStatus:       client.PaymentStatus(r.PaymentStatus),
		AssignedTo:          r.AssignedTo,
	}
	if err := req.Validate(); err != nil {
		return client.Client{}, err
	}
	last, err := parseTime(r.LastContact)
	if err != nil {
		return client.Client{}, fmt.Errorf("lastContact: %w", err)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return client.Client{}, fmt.Errorf("createdAt: %w", err)
	}
	return newClient(r.ID, req, created, last), nil
}

func encodeUsers(users []user.User) ([]byte, error) {
	recs := make([]userRecord, 0, len(users))
	for i := range users {
		u := &users[i]
		recs = append(recs, userRecord{
			ID:           u.ID,
			Email:        u.Email,
			Name:         u.Name,
			PasswordHash: u.PasswordHash,
			Role:         string(u.Role),
			CreatedAt:    formatTime(u.CreatedAt),
		})
	}
	return json.Marshal(recs)
}

func (r *userRecord) decode() (user.User, error) {
	if r.ID == "" || r.Name == "" {
		return user.User{}, fmt.Errorf("missing id or name")
	}
	role := user.Role(r.Role)
	if !role.Valid() {
		return user.User{}, fmt.Errorf("invalid role %q", r.Role)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return user.User{}, fmt.Errorf("createdAt: %w", err)
	}
	return user.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		Role:         role,
		CreatedAt:    created,
	}, nil
}

// decodeSlot parses a slot payload. A payload that is not a JSON array
// yields an empty collection; individual records that fail to decode are
// dropped. Both cases are logged and never returned as errors.
func decodeSlot[R any, T any, PR interface {
	*R
	decode() (T, error)
}](name string, payload []byte) []T {
	if len(payload) == 0 {
		return []T{}
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(payload, &raws); err != nil {
		slog.Warn("slot payload unreadable, starting empty", "slot", name, "error", err)
		return []T{}
	}
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		var rec R
		if err := json.Unmarshal(raw, &rec); err != nil {
			slog.Warn("dropping malformed record", "slot", name, "index", i, "error", err)
			continue
		}
		item, err := PR(&rec).decode()
		if err != nil {
			slog.Warn("dropping invalid record", "slot", name, "index", i, "error", err)
			continue
		}
		out = append(out, item)
	}
	return out
}

func decodeTasks(payload []byte) []task.Task {
	return decodeSlot[taskRecord, task.Task](slot.Tasks, payload)
}

func decodeClients(payload []byte) []client.Client {
	return decodeSlot[clientRecord, client.Client](slot.Clients, payload)
}

func decodeUsers(payload []byte) []user.User {
	return decodeSlot[userRecord, user.User](slot.Employees, payload)
}
