package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/client"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/task"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/middleware"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/broadcast"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/database"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/messagequeue"
)

var _ database.Store = (*mockStore)(nil)

// mockStore is an in-memory database.Store.
type mockStore struct {
	mu      sync.Mutex
	tasks   []task.Task
	clients []client.Client
	users   []user.User
	nextID  int

	listTasksCalls int
	updateCalls    int

	// Error hooks; set these to inject failures.
	listTasksErr  error
	updateTaskErr error
	deleteTaskErr error
	createUserErr error
}

func (m *mockStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *mockStore) ListTasks(_ context.Context) ([]task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listTasksCalls++
	if m.listTasksErr != nil {
		return nil, m.listTasksErr
	}
	return append([]task.Task{}, m.tasks...), nil
}

func (m *mockStore) GetTask(_ context.Context, id string) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			t := m.tasks[i]
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateTask(ctx context.Context, req task.CreateRequest) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := task.Task{
		ID:        m.id("t"),
		Text:      req.Text,
		CreatedAt: time.Now(),
		DueDate:   req.DueDate,
		Priority:  req.Priority,
		Category:  req.Category,
	}
	if u := middleware.UserFromContext(ctx); u != nil {
		t.OwnerID = u.ID
	}
	m.tasks = append(m.tasks, t)
	return &t, nil
}

func (m *mockStore) UpdateTask(_ context.Context, id string, req task.UpdateRequest) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateTaskErr != nil {
		return nil, m.updateTaskErr
	}
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i].Apply(req)
			t := m.tasks[i]
			return &t, nil
		}
	}
	return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
}

func (m *mockStore) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteTaskErr != nil {
		return m.deleteTaskErr
	}
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
}

func (m *mockStore) ListClients(_ context.Context) ([]client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]client.Client{}, m.clients...), nil
}

func (m *mockStore) GetClient(_ context.Context, id string) (*client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.clients {
		if m.clients[i].ID == id {
			c := m.clients[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateClient(_ context.Context, req client.CreateRequest) (*client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	c := client.Client{
		ID:                  m.id("c"),
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		Services:            req.Services,
		Status:              req.Status,
		ProjectStatus:       req.ProjectStatus,
		DesignCharges:       req.DesignCharges,
		AmountPaid:          req.AmountPaid,
		MonthlySubscription: req.MonthlySubscription,
		PaymentStatus:       req.PaymentStatus,
		AssignedTo:          req.AssignedTo,
		LastContact:         now,
		CreatedAt:           now,
	}
	m.clients = append(m.clients, c)
	return &c, nil
}

func (m *mockStore) UpdateClient(_ context.Context, id string, req client.UpdateRequest) (*client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.clients {
		if m.clients[i].ID == id {
			m.clients[i].Apply(req)
			m.clients[i].LastContact = time.Now()
			c := m.clients[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
}

func (m *mockStore) DeleteClient(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.clients {
		if m.clients[i].ID == id {
			m.clients = append(m.clients[:i], m.clients[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
}

func (m *mockStore) UnassignClients(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for i := range m.clients {
		if m.clients[i].AssignedTo == userID {
			m.clients[i].AssignedTo = ""
			n++
		}
	}
	return n, nil
}

func (m *mockStore) ListUsers(_ context.Context) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]user.User{}, m.users...), nil
}

func (m *mockStore) GetUser(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if strings.EqualFold(m.users[i].Email, email) {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createUserErr != nil {
		return m.createUserErr
	}
	for i := range m.users {
		if strings.EqualFold(m.users[i].Email, u.Email) {
			return domain.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = m.id("u")
	}
	u.CreatedAt = time.Now()
	m.users = append(m.users, *u)
	return nil
}

func (m *mockStore) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].PasswordHash = hash
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// mockQueue implements messagequeue.Queue for testing.
type mockQueue struct {
	mu        sync.Mutex
	published []publishedMsg
}

type publishedMsg struct {
	subject string
	data    []byte
}

func (q *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	if err := messagequeue.Validate(subject, data); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, publishedMsg{subject, data})
	return nil
}

func (q *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *mockQueue) Drain() error      { return nil }
func (q *mockQueue) Close() error      { return nil }
func (q *mockQueue) IsConnected() bool { return true }

// mockHub records broadcast events.
type mockHub struct {
	mu        sync.Mutex
	broadcast []string
	sent      map[string][]any
}

func (h *mockHub) BroadcastEvent(_ context.Context, eventType string, _ any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcast = append(h.broadcast, eventType)
}

func (h *mockHub) SendToUser(_ context.Context, userID, _ string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sent == nil {
		h.sent = make(map[string][]any)
	}
	h.sent[userID] = append(h.sent[userID], payload)
}

// memCache is a map-backed cache.Cache that ignores TTLs.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes []string
	local   []string
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes = append(c.deletes, key)
	delete(c.data, key)
	return nil
}

func (c *memCache) InvalidateLocal(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local = append(c.local, key)
	delete(c.data, key)
	return nil
}

var errBackend = errors.New("backend unavailable")

var (
	testAdmin    = &user.User{ID: "admin-1", Email: "admin@example.com", Name: "Ada", Role: user.RoleAdmin}
	testEmployee = &user.User{ID: "emp-1", Email: "emp@example.com", Name: "Eve", Role: user.RoleEmployee}
)

func asUser(u *user.User) context.Context {
	return middleware.WithUser(context.Background(), u)
}

// fixture bundles a store with a coordinator wired to recording fakes.
type fixture struct {
	store *mockStore
	cache *memCache
	queue *mockQueue
	hub   *mockHub
	snaps *Snapshots
	coord *Coordinator
}

func newFixture() *fixture {
	f := &fixture{store: &mockStore{}, cache: newMemCache(), queue: &mockQueue{}, hub: &mockHub{}}
	f.snaps = NewSnapshots(f.cache, time.Minute, nil)
	f.coord = NewCoordinator(f.snaps, f.queue, f.hub, nil)
	return f
}

// assertWarned checks that userID got exactly one warn-level notification.
func assertWarned(t *testing.T, f *fixture, userID string) {
	t.Helper()
	f.hub.mu.Lock()
	defer f.hub.mu.Unlock()
	sent := f.hub.sent[userID]
	if len(sent) != 1 {
		t.Fatalf("expected one notification for %s, got %v", userID, f.hub.sent)
	}
	n, ok := sent[0].(broadcast.NotificationEvent)
	if !ok || n.Level != broadcast.LevelWarn {
		t.Fatalf("expected warn notification, got %#v", sent[0])
	}
}
