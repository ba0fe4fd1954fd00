// Package user defines the user domain model for authentication and authorization.
package user

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
)

// Role is the authorization level of an account.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleEmployee Role = "Employee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// User represents a registered account. Employees are users with
// RoleEmployee; they back client assignment.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // never serialized
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether u carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CreateRequest is the input for registering a new user.
type CreateRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
	Role     Role   `json:"role"`
}

// Validate normalizes the email and checks every field. An empty role
// defaults to RoleEmployee.
func (r *CreateRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	if err := checkEmail(r.Email); err != nil {
		return err
	}
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if err := checkPassword(r.Password); err != nil {
		return err
	}
	if r.Role == "" {
		r.Role = RoleEmployee
	}
	if !r.Role.Valid() {
		return fmt.Errorf("%w: role must be %s or %s", domain.ErrValidation, RoleAdmin, RoleEmployee)
	}
	return nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func checkEmail(e string) error {
	if e == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(e); err != nil {
		return fmt.Errorf("%w: invalid email format", domain.ErrValidation)
	}
	return nil
}

func checkPassword(p string) error {
	switch {
	case p == "":
		return fmt.Errorf("%w: password is required", domain.ErrValidation)
	case len(p) < MinPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, MinPasswordLength)
	}
	return nil
}

// LoginRequest is the input for user authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
}

// Validate checks that both credentials are present. Format is not checked:
// a malformed email simply fails to log in.
func (r *LoginRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	if r.Email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	return nil
}

// LoginResponse is returned after successful authentication.
type LoginResponse struct {
	AccessToken string `json:"access_token"` //nolint:gosec // response field, not a hardcoded secret
	ExpiresIn   int    `json:"expires_in"`   // seconds until access token expires
	User        User   `json:"user"`
}

// TokenClaims contains the JWT payload fields.
type TokenClaims struct {
	UserID   string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	IssuedAt int64  `json:"iat"`
	Expiry   int64  `json:"exp"`
	JTI      string `json:"jti"`
	Audience string `json:"aud"`
	Issuer   string `json:"iss"`
}

// ResetPasswordRequest sets a new password for an account.
type ResetPasswordRequest struct {
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
}

// Validate applies the same password rules as account creation.
func (r *ResetPasswordRequest) Validate() error {
	return checkPassword(r.Password)
}
