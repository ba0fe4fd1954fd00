package client

import (
	"errors"
	"testing"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestPendingAmount(t *testing.T) {
	tests := []struct {
		name string
		c    Client
		want float64
	}{
		{name: "partial payment", c: Client{DesignCharges: ptr(1000.0), AmountPaid: ptr(400.0)}, want: 600},
		{name: "no charges", c: Client{}, want: 0},
		{name: "charges only", c: Client{DesignCharges: ptr(250.0)}, want: 250},
		{name: "overpaid", c: Client{DesignCharges: ptr(100.0), AmountPaid: ptr(150.0)}, want: -50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.PendingAmount(); got != tt.want {
				t.Errorf("PendingAmount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr bool
	}{
		{name: "minimal", req: CreateRequest{Name: "Acme", Email: "ops@acme.io"}},
		{name: "full", req: CreateRequest{
			Name: "Acme", Email: "ops@acme.io", Services: []Service{ServiceSEO, ServiceBranding},
			Status: StatusClient, ProjectStatus: ProjectInProgress, PaymentStatus: PaymentPartial,
			DesignCharges: ptr(1000.0), AmountPaid: ptr(400.0),
		}},
		{name: "missing name", req: CreateRequest{Email: "ops@acme.io"}, wantErr: true},
		{name: "bad email", req: CreateRequest{Name: "Acme", Email: "nope"}, wantErr: true},
		{name: "bad status", req: CreateRequest{Name: "Acme", Email: "ops@acme.io", Status: "Lead"}, wantErr: true},
		{name: "bad service", req: CreateRequest{Name: "Acme", Email: "ops@acme.io", Services: []Service{"Catering"}}, wantErr: true},
		{name: "duplicate service", req: CreateRequest{Name: "Acme", Email: "ops@acme.io", Services: []Service{ServiceSEO, ServiceSEO}}, wantErr: true},
		{name: "negative amount", req: CreateRequest{Name: "Acme", Email: "ops@acme.io", AmountPaid: ptr(-1.0)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateRequest_Defaults(t *testing.T) {
	req := CreateRequest{Name: "Acme", Email: "ops@acme.io", AssignedTo: "unassigned"}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != StatusProspect || req.ProjectStatus != ProjectNotStarted || req.PaymentStatus != PaymentPending {
		t.Errorf("unexpected defaults: %+v", req)
	}
	if req.AssignedTo != "" {
		t.Errorf("assigned_to = %q, want empty", req.AssignedTo)
	}
	if req.Services == nil {
		t.Error("services should default to an empty set")
	}
}

func TestApply(t *testing.T) {
	c := Client{ID: "c1", Name: "Acme", Status: StatusProspect, AssignedTo: "e1"}
	req := StatusRequest{Status: StatusClient}.Update()
	none := ""
	req.AssignedTo = &none
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Apply(req)
	if c.Status != StatusClient {
		t.Errorf("status = %q", c.Status)
	}
	if c.AssignedTo != "" {
		t.Errorf("assigned_to = %q, want cleared", c.AssignedTo)
	}
	if c.ID != "c1" || c.Name != "Acme" {
		t.Errorf("untouched fields changed: %+v", c)
	}
}
