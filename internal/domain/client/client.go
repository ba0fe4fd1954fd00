// Package client defines the CRM Client domain entity.
package client

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
)

// Status is the relationship stage of a client.
type Status string

const (
	StatusProspect   Status = "Prospect"
	StatusInterested Status = "Interested"
	StatusClient     Status = "Client"
	StatusOnHold     Status = "On Hold"
	StatusPast       Status = "Past Client"
)

// Statuses lists every client status in pipeline order.
var Statuses = []Status{StatusProspect, StatusInterested, StatusClient, StatusOnHold, StatusPast}

// ProjectStatus is the delivery state of the client's project.
type ProjectStatus string

const (
	ProjectNotStarted       ProjectStatus = "Not Started"
	ProjectInProgress       ProjectStatus = "In Progress"
	ProjectAwaitingFeedback ProjectStatus = "Awaiting Feedback"
	ProjectCompleted        ProjectStatus = "Completed"
	ProjectOnHold           ProjectStatus = "On Hold"
)

// ProjectStatuses lists every project status.
var ProjectStatuses = []ProjectStatus{ProjectNotStarted, ProjectInProgress, ProjectAwaitingFeedback, ProjectCompleted, ProjectOnHold}

// PaymentStatus tracks invoicing.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPartial PaymentStatus = "Partial"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentOverdue PaymentStatus = "Overdue"
)

// PaymentStatuses lists every payment status.
var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentPartial, PaymentPaid, PaymentOverdue}

// Service is an offering the agency sells.
type Service string

const (
	ServiceWebDesign      Service = "Website Design"
	ServiceWebDevelopment Service = "Web Development"
	ServiceSEO            Service = "SEO"
	ServiceSocialMedia    Service = "Social Media Marketing"
	ServiceBranding       Service = "Branding"
	ServiceMaintenance    Service = "Maintenance"
)

// Services lists every offering.
var Services = []Service{ServiceWebDesign, ServiceWebDevelopment, ServiceSEO, ServiceSocialMedia, ServiceBranding, ServiceMaintenance}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Client is a CRM record.
type Client struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Email               string        `json:"email"`
	Phone               string        `json:"phone"`
	Address             string        `json:"address,omitempty"`
	Services            []Service     `json:"services"`
	Status              Status        `json:"status"`
	ProjectStatus       ProjectStatus `json:"project_status"`
	DesignCharges       *float64      `json:"design_charges,omitempty"`
	AmountPaid          *float64      `json:"amount_paid,omitempty"`
	MonthlySubscription *float64      `json:"monthly_subscription,omitempty"`
	PaymentStatus       PaymentStatus `json:"payment_status,omitempty"`
	AssignedTo          string        `json:"assigned_to,omitempty"`
	LastContact         time.Time     `json:"last_contact"`
	CreatedAt           time.Time     `json:"created_at"`
}

func valueOf(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// PendingAmount is design charges minus the amount paid. Missing values count
// as zero; a negative result means the client overpaid.
func (c *Client) PendingAmount() float64 {
	return valueOf(c.DesignCharges) - valueOf(c.AmountPaid)
}

// Subscription returns the monthly subscription, zero when unset.
func (c *Client) Subscription() float64 {
	return valueOf(c.MonthlySubscription)
}

// CreateRequest holds the form fields for a new client.
type CreateRequest struct {
	Name                string        `json:"name"`
	Email               string        `json:"email"`
	Phone               string        `json:"phone"`
	Address             string        `json:"address,omitempty"`
	Services            []Service     `json:"services"`
	Status              Status        `json:"status,omitempty"`
	ProjectStatus       ProjectStatus `json:"project_status,omitempty"`
	DesignCharges       *float64      `json:"design_charges,omitempty"`
	AmountPaid          *float64      `json:"amount_paid,omitempty"`
	MonthlySubscription *float64      `json:"monthly_subscription,omitempty"`
	PaymentStatus       PaymentStatus `json:"payment_status,omitempty"`
	AssignedTo          string        `json:"assigned_to,omitempty"`
}

// Validate normalizes the request, fills defaults and checks every field.
func (r *CreateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	r.AssignedTo = normalizeAssignee(r.AssignedTo)

	if r.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Status == "" {
		r.Status = StatusProspect
	}
	if r.ProjectStatus == "" {
		r.ProjectStatus = ProjectNotStarted
	}
	if r.PaymentStatus == "" {
		r.PaymentStatus = PaymentPending
	}
	if r.Services == nil {
		r.Services = []Service{}
	}
	return validateEnums(&r.Status, &r.ProjectStatus, &r.PaymentStatus, r.Services,
		r.DesignCharges, r.AmountPaid, r.MonthlySubscription)
}

// UpdateRequest is a partial client edit. Nil fields are unchanged; an empty
// AssignedTo string (or "unassigned") clears the assignment.
type UpdateRequest struct {
	Name                *string        `json:"name,omitempty"`
	Email               *string        `json:"email,omitempty"`
	Phone               *string        `json:"phone,omitempty"`
	Address             *string        `json:"address,omitempty"`
	Services            []Service      `json:"services,omitempty"`
	Status              *Status        `json:"status,omitempty"`
	ProjectStatus       *ProjectStatus `json:"project_status,omitempty"`
	DesignCharges       *float64       `json:"design_charges,omitempty"`
	AmountPaid          *float64       `json:"amount_paid,omitempty"`
	MonthlySubscription *float64       `json:"monthly_subscription,omitempty"`
	PaymentStatus       *PaymentStatus `json:"payment_status,omitempty"`
	AssignedTo          *string        `json:"assigned_to,omitempty"`
}

// Validate normalizes and checks the partial update.
func (r *UpdateRequest) Validate() error {
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		if n == "" {
			return fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
		}
		r.Name = &n
	}
	if r.Email != nil {
		e := strings.TrimSpace(*r.Email)
		if err := validateEmail(e); err != nil {
			return err
		}
		r.Email = &e
	}
	if r.AssignedTo != nil {
		a := normalizeAssignee(*r.AssignedTo)
		r.AssignedTo = &a
	}
	return validateEnums(r.Status, r.ProjectStatus, r.PaymentStatus, r.Services,
		r.DesignCharges, r.AmountPaid, r.MonthlySubscription)
}

// Apply copies the set fields of r onto c. ID and CreatedAt are never
// touched; LastContact is stamped by the store.
func (c *Client) Apply(r UpdateRequest) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.Phone != nil {
		c.Phone = strings.TrimSpace(*r.Phone)
	}
	if r.Address != nil {
		c.Address = strings.TrimSpace(*r.Address)
	}
	if r.Services != nil {
		c.Services = append([]Service(nil), r.Services...)
	}
	if r.Status != nil {
		c.Status = *r.Status
	}
	if r.ProjectStatus != nil {
		c.ProjectStatus = *r.ProjectStatus
	}
	if r.DesignCharges != nil {
		v := *r.DesignCharges
		c.DesignCharges = &v
	}
	if r.AmountPaid != nil {
		v := *r.AmountPaid
		c.AmountPaid = &v
	}
	if r.MonthlySubscription != nil {
		v := *r.MonthlySubscription
		c.MonthlySubscription = &v
	}
	if r.PaymentStatus != nil {
		c.PaymentStatus = *r.PaymentStatus
	}
	if r.AssignedTo != nil {
		c.AssignedTo = *r.AssignedTo
	}
}

// StatusRequest changes only the relationship and project stages.
type StatusRequest struct {
	Status        Status        `json:"status"`
	ProjectStatus ProjectStatus `json:"project_status,omitempty"`
}

// Update converts the status change into a partial update.
func (r StatusRequest) Update() UpdateRequest {
	u := UpdateRequest{}
	if r.Status != "" {
		s := r.Status
		u.Status = &s
	}
	if r.ProjectStatus != "" {
		p := r.ProjectStatus
		u.ProjectStatus = &p
	}
	return u
}

func normalizeAssignee(id string) string {
	id = strings.TrimSpace(id)
	if strings.EqualFold(id, "unassigned") {
		return ""
	}
	return id
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email format", domain.ErrValidation)
	}
	return nil
}

func validateEnums(status *Status, project *ProjectStatus, payment *PaymentStatus, services []Service, amounts ...*float64) error {
	if status != nil && !contains(Statuses, *status) {
		return fmt.Errorf("%w: invalid status %q", domain.ErrValidation, *status)
	}
	if project != nil && !contains(ProjectStatuses, *project) {
		return fmt.Errorf("%w: invalid project status %q", domain.ErrValidation, *project)
	}
	if payment != nil && *payment != "" && !contains(PaymentStatuses, *payment) {
		return fmt.Errorf("%w: invalid payment status %q", domain.ErrValidation, *payment)
	}
	seen := make(map[Service]bool, len(services))
	for _, s := range services {
		if !contains(Services, s) {
			return fmt.Errorf("%w: invalid service %q", domain.ErrValidation, s)
		}
		if seen[s] {
			return fmt.Errorf("%w: duplicate service %q", domain.ErrValidation, s)
		}
		seen[s] = true
	}
	for _, a := range amounts {
		if a != nil && *a < 0 {
			return fmt.Errorf("%w: amounts must not be negative", domain.ErrValidation)
		}
	}
	return nil
}
