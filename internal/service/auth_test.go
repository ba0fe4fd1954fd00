package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/config"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/middleware"
)

const testSecret = "test-secret-key-must-be-long-enough"

func newTestAuthService(store *mockStore) *AuthService {
	cfg := config.Auth{
		Enabled:              true,
		JWTSecret:            testSecret,
		AccessTokenExpiry:    15 * time.Minute,
		BcryptCost:           4, // low cost for fast tests
		DefaultAdminEmail:    "admin@test.com",
		DefaultAdminName:     "Admin",
		DefaultAdminPassword: "Adminpass123",
		AllowSignup:          true,
	}
	return NewAuthService(store, &cfg)
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, &user.CreateRequest{
		Email:    " Test@Example.com ",
		Name:     "Test User",
		Password: "Password123",
		Role:     user.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.User.Email != "test@example.com" {
		t.Errorf("email = %q, want test@example.com", resp.User.Email)
	}
	if resp.User.Role != user.RoleEmployee {
		t.Errorf("role = %q, signup must not grant admin", resp.User.Role)
	}
	if resp.AccessToken == "" {
		t.Error("access token is empty")
	}

	login, err := svc.Login(ctx, user.LoginRequest{Email: "TEST@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Errorf("login user = %q, want %q", login.User.ID, resp.User.ID)
	}
	if login.ExpiresIn != 900 {
		t.Errorf("expires_in = %d, want 900", login.ExpiresIn)
	}
}

func TestAuthService_SignupDuplicate(t *testing.T) {
	svc := newTestAuthService(&mockStore{})
	req := func() *user.CreateRequest {
		return &user.CreateRequest{Email: "dup@example.com", Name: "Dup", Password: "Password123"}
	}
	if _, err := svc.Signup(context.Background(), req()); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(context.Background(), req()); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthService_SignupDisabled(t *testing.T) {
	svc := newTestAuthService(&mockStore{})
	svc.cfg.AllowSignup = false
	_, err := svc.Signup(context.Background(), &user.CreateRequest{Email: "a@b.co", Name: "A", Password: "Password123"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthService_InvalidLogin(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, &user.CreateRequest{Email: "test@example.com", Name: "Test", Password: "Password123"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	tests := []struct {
		name string
		req  user.LoginRequest
		want error
	}{
		{"wrong password", user.LoginRequest{Email: "test@example.com", Password: "wrongpassword"}, domain.ErrUnauthenticated},
		{"unknown user", user.LoginRequest{Email: "nobody@example.com", Password: "Password123"}, domain.ErrUnauthenticated},
		{"missing password", user.LoginRequest{Email: "test@example.com"}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAuthService_JWTSignAndVerify(t *testing.T) {
	svc := newTestAuthService(&mockStore{})
	u := &user.User{ID: "u1", Email: "jwt@test.com", Name: "JWT User", Role: user.RoleAdmin}

	token, err := svc.signJWT(u)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != user.RoleAdmin || claims.JTI == "" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestAuthService_InvalidToken(t *testing.T) {
	svc := newTestAuthService(&mockStore{})
	u := &user.User{ID: "u1", Email: "a@b.co", Role: user.RoleEmployee}
	valid, err := svc.signJWT(u)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	other := newTestAuthService(&mockStore{})
	other.secret = []byte("a-different-secret-of-enough-length")
	foreign, _ := other.signJWT(u)

	expiredSvc := newTestAuthService(&mockStore{})
	expiredSvc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _ := expiredSvc.signJWT(u)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "garbage.token.here"},
		{"malformed", "not-even-three-parts"},
		{"foreign secret", foreign},
		{"expired", expired},
		{"tampered payload", tampered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ValidateAccessToken(tt.token); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAuthService_SeedDefaultAdmin(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := context.Background()

	if err := svc.SeedDefaultAdmin(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.SeedDefaultAdmin(ctx); err != nil {
		t.Fatalf("seed second: %v", err)
	}
	if len(store.users) != 1 || store.users[0].Role != user.RoleAdmin {
		t.Fatalf("expected exactly one admin, got %+v", store.users)
	}

	if _, err := svc.Login(ctx, user.LoginRequest{Email: "admin@test.com", Password: "Adminpass123"}); err != nil {
		t.Fatalf("seeded admin cannot log in: %v", err)
	}
}

func TestAuthService_SeedWithoutPassword(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	svc.cfg.DefaultAdminPassword = ""
	if err := svc.SeedDefaultAdmin(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(store.users) != 0 {
		t.Fatal("no admin should be created without a password")
	}
}

func TestAuthService_ResetPassword(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := context.Background()
	if _, err := svc.Signup(ctx, &user.CreateRequest{Email: "r@example.com", Name: "R", Password: "Password123"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.ResetPassword(ctx, "r@example.com", user.ResetPasswordRequest{Password: "short"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := svc.ResetPassword(ctx, "R@example.com", user.ResetPasswordRequest{Password: "Newpassword1"}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := svc.Login(ctx, user.LoginRequest{Email: "r@example.com", Password: "Newpassword1"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if err := svc.ResetPassword(ctx, "ghost@example.com", user.ResetPasswordRequest{Password: "Newpassword1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	store := &mockStore{users: []user.User{*testEmployee}}
	svc := newTestAuthService(store)

	got, err := svc.Me(asUser(testEmployee))
	if err != nil || got.ID != testEmployee.ID {
		t.Fatalf("Me: %v %+v", err, got)
	}

	admin := middleware.DefaultAdmin
	got, err = svc.Me(asUser(&admin))
	if err != nil || got.ID != admin.ID {
		t.Fatalf("Me for built-in admin: %v %+v", err, got)
	}

	if _, err := svc.Me(context.Background()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
