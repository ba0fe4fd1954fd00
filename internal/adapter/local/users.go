package local

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
)

func userID(u *user.User) string { return u.ID }

// ListUsers returns every account.
func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	return s.users.snapshot(), nil
}

// GetUser returns one account.
func (s *Store) GetUser(_ context.Context, id string) (*user.User, error) {
	u, ok := s.users.find(func(u *user.User) bool { return u.ID == id })
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

// GetUserByEmail looks an account up by case-insensitive email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := s.users.find(func(u *user.User) bool { return strings.EqualFold(u.Email, email) })
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	return &u, nil
}

// CreateUser stores u, filling ID and CreatedAt when empty. A duplicate
// email is a conflict.
func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = s.newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	created := *u
	return s.users.mutate(ctx, s.slots, func(items []user.User) ([]user.User, error) {
		for i := range items {
			if created.Email != "" && strings.EqualFold(items[i].Email, created.Email) {
				return nil, fmt.Errorf("email %s: %w", created.Email, domain.ErrConflict)
			}
			if items[i].ID == created.ID {
				return nil, fmt.Errorf("user %s: %w", created.ID, domain.ErrConflict)
			}
		}
		return append(items, created), nil
	})
}

// UpdatePassword replaces the stored hash.
func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.users.mutate(ctx, s.slots, func(items []user.User) ([]user.User, error) {
		i := indexOf(items, userID, id)
		if i < 0 {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		items[i].PasswordHash = passwordHash
		return items, nil
	})
}

// DeleteUser removes an account.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.users.mutate(ctx, s.slots, func(items []user.User) ([]user.User, error) {
		i := indexOf(items, userID, id)
		if i < 0 {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return slices.Delete(items, i, i+1), nil
	})
}
