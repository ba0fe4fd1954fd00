package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/config"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/client"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/cache"
)

func newEmployeeFixture() (*fixture, *EmployeeService) {
	f := newFixture()
	f.store.users = []user.User{*testAdmin, *testEmployee}
	auth := NewAuthService(f.store, &config.Auth{JWTSecret: testSecret, AccessTokenExpiry: time.Minute, BcryptCost: 4})
	return f, NewEmployeeService(f.store, f.store, auth, f.snaps, f.coord)
}

func TestEmployeeServiceList(t *testing.T) {
	_, svc := newEmployeeFixture()
	got, err := svc.List(asUser(testEmployee))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != testEmployee.ID {
		t.Fatalf("expected only the employee, got %+v", got)
	}
}

func TestEmployeeServiceCreate(t *testing.T) {
	f, svc := newEmployeeFixture()

	req := user.CreateRequest{Email: "new@example.com", Name: "Nia", Password: "longenough", Role: user.RoleAdmin}
	if _, err := svc.Create(asUser(testEmployee), req); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	u, err := svc.Create(asUser(testAdmin), req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Role != user.RoleEmployee {
		t.Fatalf("role = %s, want Employee", u.Role)
	}
	if u.PasswordHash == "" || u.PasswordHash == "longenough" {
		t.Fatal("password was not hashed")
	}
	if len(f.store.users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(f.store.users))
	}
}

func TestEmployeeServiceDeleteUnassignsClients(t *testing.T) {
	f, svc := newEmployeeFixture()
	f.store.clients = []client.Client{
		{ID: "c1", Name: "A", AssignedTo: testEmployee.ID},
		{ID: "c2", Name: "B", AssignedTo: testEmployee.ID},
		{ID: "c3", Name: "C"},
	}
	ctx := asUser(testAdmin)
	_ = f.cache.Set(ctx, cache.KeyClients, []byte("[]"), 0)

	if err := svc.Delete(ctx, testEmployee.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, c := range f.store.clients {
		if c.AssignedTo != "" {
			t.Fatalf("client %s still assigned to %s", c.ID, c.AssignedTo)
		}
	}
	if _, err := f.store.GetUser(ctx, testEmployee.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("employee was not deleted")
	}
	if _, ok, _ := f.cache.Get(ctx, cache.KeyClients); ok {
		t.Fatal("client snapshot must be invalidated")
	}
}

func TestEmployeeServiceDeleteUnknownWarns(t *testing.T) {
	f, svc := newEmployeeFixture()

	if err := svc.Delete(asUser(testAdmin), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	assertWarned(t, f, testAdmin.ID)
}

func TestEmployeeServiceDeleteRules(t *testing.T) {
	_, svc := newEmployeeFixture()

	tests := []struct {
		name string
		as   *user.User
		id   string
		want error
	}{
		{"employee forbidden", testEmployee, testEmployee.ID, domain.ErrForbidden},
		{"self", testAdmin, testAdmin.ID, domain.ErrValidation},
		{"unknown", testAdmin, "ghost", domain.ErrNotFound},
		{"admin is not an employee", &user.User{ID: "admin-2", Role: user.RoleAdmin}, testAdmin.ID, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Delete(asUser(tt.as), tt.id); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
