package http

import (
	"net/http"
	"slices"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/config"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/client"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/task"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/view"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/resilience"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/service"
)

const maxRequestBodySize = 1 << 20 // 1 MB

const (
	taskNoun     noun = "task"
	clientNoun   noun = "client"
	employeeNoun noun = "employee"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Tasks       *service.TaskService
	Clients     *service.ClientService
	Employees   *service.EmployeeService
	Auth        *service.AuthService
	Coordinator *service.Coordinator
	Config      *config.Config
	Breaker     *resilience.Breaker // nil in local mode
	Version     string
}

// --- Health ---

type healthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Store   string `json:"store"`
	Circuit string `json:"circuit,omitempty"`
}

// Health handles GET /health. An open circuit reports degraded with 503.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	status := healthStatus{Status: "ok", Version: h.Version, Store: h.Config.Store.Mode}
	code := http.StatusOK
	if h.Breaker != nil {
		status.Circuit = h.Breaker.State()
		if status.Circuit == "open" {
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, status)
}

// --- Options ---

type optionsResponse struct {
	Priorities      []task.Priority        `json:"priorities"`
	TaskFilters     []view.Filter          `json:"task_filters"`
	TaskSorts       []view.SortKey         `json:"task_sorts"`
	ClientStatuses  []client.Status        `json:"client_statuses"`
	ProjectStatuses []client.ProjectStatus `json:"project_statuses"`
	PaymentStatuses []client.PaymentStatus `json:"payment_statuses"`
	Services        []client.Service       `json:"services"`
	ClientSorts     []view.ClientSort      `json:"client_sorts"`
	Employees       []employeeOption       `json:"employees"`
}

type employeeOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Options handles GET /api/v1/options. It returns every enumeration the
// task and client forms offer, plus the assignable employees.
func (h *Handlers) Options(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Employees.List(r.Context())
	if err != nil {
		writeDomainError(w, err, "employees not found")
		return
	}
	opts := make([]employeeOption, 0, len(employees)+1)
	opts = append(opts, employeeOption{ID: view.Unassigned, Name: "Unassigned"})
	for i := range employees {
		opts = append(opts, employeeOption{ID: employees[i].ID, Name: employees[i].Name})
	}

	writeJSON(w, http.StatusOK, optionsResponse{
		Priorities:      slices.Clone(task.Priorities),
		TaskFilters:     []view.Filter{view.FilterAll, view.FilterToday, view.FilterOverdue},
		TaskSorts:       []view.SortKey{view.SortCreatedAt, view.SortDueDate, view.SortPriority},
		ClientStatuses:  slices.Clone(client.Statuses),
		ProjectStatuses: slices.Clone(client.ProjectStatuses),
		PaymentStatuses: slices.Clone(client.PaymentStatuses),
		Services:        slices.Clone(client.Services),
		ClientSorts: []view.ClientSort{
			view.ClientSortName, view.ClientSortLastContact,
			view.ClientSortPendingAmount, view.ClientSortCreatedAt,
		},
		Employees: opts,
	})
}

// --- Settings ---

type settingsResponse struct {
	StoreMode   string      `json:"store_mode"`
	StoreSlot   string      `json:"store_slot,omitempty"`
	AuthEnabled bool        `json:"auth_enabled"`
	AllowSignup bool        `json:"allow_signup"`
	Timezone    string      `json:"timezone"`
	SnapshotTTL string      `json:"snapshot_ttl"`
	NATS        bool        `json:"nats_enabled"`
	OTEL        bool        `json:"otel_enabled"`
	Roles       []user.Role `json:"roles"`
}

// Settings handles GET /api/v1/settings. Secrets and connection strings are
// never exposed.
func (h *Handlers) Settings(w http.ResponseWriter, _ *http.Request) {
	cfg := h.Config
	resp := settingsResponse{
		StoreMode:   cfg.Store.Mode,
		AuthEnabled: cfg.Auth.Enabled,
		AllowSignup: cfg.Auth.AllowSignup,
		Timezone:    cfg.App.Timezone,
		SnapshotTTL: cfg.Cache.SnapshotTTL.String(),
		NATS:        cfg.NATS.URL != "",
		OTEL:        cfg.OTEL.Enabled,
		Roles:       []user.Role{user.RoleAdmin, user.RoleEmployee},
	}
	if cfg.Store.Mode == config.StoreLocal {
		resp.StoreSlot = cfg.Store.Slot
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Mutation state ---

// MutationState handles GET /api/v1/mutations/{kind}/{id}.
func (h *Handlers) MutationState(w http.ResponseWriter, r *http.Request) {
	kind := urlParam(r, "kind")
	switch kind {
	case service.KindTask, service.KindClient, service.KindEmployee:
	default:
		writeError(w, http.StatusBadRequest, "unknown entity kind")
		return
	}
	writeJSON(w, http.StatusOK, h.Coordinator.State(kind, urlParam(r, "id")))
}
