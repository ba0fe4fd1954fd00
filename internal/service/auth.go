package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/config"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/middleware"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/database"
)

const (
	tokenAudience = "dashboard-api"
	tokenIssuer   = "dashboard"
)

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)

// AuthService handles signup, login and JWT access tokens.
type AuthService struct {
	store  database.UserStore
	cfg    *config.Auth
	secret []byte
	now    func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(store database.UserStore, cfg *config.Auth) *AuthService {
	return &AuthService{
		store:  store,
		cfg:    cfg,
		secret: []byte(cfg.JWTSecret),
		now:    time.Now,
	}
}

// CreateUser validates req and stores a user with a bcrypt-hashed password.
func (s *AuthService) CreateUser(ctx context.Context, req *user.CreateRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Signup registers a new employee account and logs it in. Public signup
// never grants the admin role.
func (s *AuthService) Signup(ctx context.Context, req *user.CreateRequest) (*user.LoginResponse, error) {
	if !s.cfg.AllowSignup {
		return nil, fmt.Errorf("%w: signup is disabled", domain.ErrForbidden)
	}
	req.Role = user.RoleEmployee

	u, err := s.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}
	slog.Info("user signed up", "user_id", u.ID, "email", u.Email)
	return s.issue(u)
}

// Login authenticates a user and returns an access token.
func (s *AuthService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *user.User) (*user.LoginResponse, error) {
	token, err := s.signJWT(u)
	if err != nil {
		return nil, fmt.Errorf("sign jwt: %w", err)
	}
	return &user.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.cfg.AccessTokenExpiry.Seconds()),
		User:        *u,
	}, nil
}

// ValidateAccessToken verifies a JWT and returns the claims.
func (s *AuthService) ValidateAccessToken(token string) (*user.TokenClaims, error) {
	return s.verifyJWT(token)
}

// Me returns the stored account of the caller. The built-in admin used
// when authentication is off has no stored account and is returned as is.
func (s *AuthService) Me(ctx context.Context) (*user.User, error) {
	caller := middleware.UserFromContext(ctx)
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	u, err := s.store.GetUser(ctx, caller.ID)
	if errors.Is(err, domain.ErrNotFound) && caller.ID == middleware.DefaultAdmin.ID {
		return caller, nil
	}
	return u, err
}

// ListUsers returns every account.
func (s *AuthService) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}

// ResetPassword replaces the password of the account registered under email.
func (s *AuthService) ResetPassword(ctx context.Context, email string, req user.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	u, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	slog.Info("password reset", "user_id", u.ID)
	return nil
}

// SeedDefaultAdmin creates the configured admin account unless an account
// with that email already exists. Without a configured password nothing is
// seeded.
func (s *AuthService) SeedDefaultAdmin(ctx context.Context) error {
	if s.cfg.DefaultAdminPassword == "" {
		slog.Warn("no default admin password configured, skipping admin seed")
		return nil
	}
	_, err := s.store.GetUserByEmail(ctx, s.cfg.DefaultAdminEmail)
	if err == nil {
		return nil // already seeded
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	u, err := s.CreateUser(ctx, &user.CreateRequest{
		Email:    s.cfg.DefaultAdminEmail,
		Name:     s.cfg.DefaultAdminName,
		Password: s.cfg.DefaultAdminPassword,
		Role:     user.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	slog.Info("seeded default admin user", "user_id", u.ID, "email", u.Email)
	return nil
}

func (s *AuthService) hash(password string) (string, error) {
	cost := s.cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// --- JWT implementation (HS256 with stdlib) ---

// jwtHeader is the fixed base64url-encoded header for HS256.
var jwtHeader = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

func (s *AuthService) sign(input string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *AuthService) signJWT(u *user.User) (string, error) {
	now := s.now()
	claims := user.TokenClaims{
		UserID:   u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		IssuedAt: now.Unix(),
		Expiry:   now.Add(s.cfg.AccessTokenExpiry).Unix(),
		JTI:      uuid.NewString(),
		Audience: tokenAudience,
		Issuer:   tokenIssuer,
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	signingInput := jwtHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	return signingInput + "." + s.sign(signingInput), nil
}

func (s *AuthService) verifyJWT(token string) (*user.TokenClaims, error) {
	parts := strings.SplitN(token, ".", 3)
	if len(parts) != 3 {
		return nil, errors.New("malformed token")
	}
	if parts[0] != jwtHeader {
		return nil, errors.New("unsupported token header")
	}

	expected := s.sign(parts[0] + "." + parts[1])
	if !hmac.Equal([]byte(parts[2]), []byte(expected)) {
		return nil, errors.New("invalid signature")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	var claims user.TokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("unmarshal claims: %w", err)
	}

	if s.now().Unix() > claims.Expiry {
		return nil, errors.New("token expired")
	}
	if claims.Audience != tokenAudience {
		return nil, errors.New("invalid token audience")
	}
	if claims.Issuer != tokenIssuer {
		return nil, errors.New("invalid token issuer")
	}
	if !claims.Role.Valid() {
		return nil, errors.New("invalid token role")
	}
	return &claims, nil
}
