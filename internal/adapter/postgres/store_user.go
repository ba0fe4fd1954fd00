package postgres

import (
	"context"
	"fmt"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
)

const profileColumns = `id::text, email, full_name, password_hash, role, created_at`

func scanUser(row scannable) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// CreateUser inserts a profile. It is reachable without a caller since
// signup creates the first session. ID and CreatedAt are filled from the
// database when empty.
func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	var id *string
	if u.ID != "" {
		if err := checkID("user", u.ID); err != nil {
			return fmt.Errorf("%w: user id must be a uuid", domain.ErrValidation)
		}
		id = &u.ID
	}

	return s.write(func() error {
		created, err := scanUser(s.pool.QueryRow(ctx,
			`INSERT INTO profiles (id, email, full_name, password_hash, role)
			 VALUES (COALESCE($1::uuid, gen_random_uuid()), $2, $3, $4, $5)
			 RETURNING `+profileColumns,
			id, u.Email, u.Name, u.PasswordHash, u.Role))
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
			}
			return fmt.Errorf("create user: %w", err)
		}
		u.ID = created.ID
		u.CreatedAt = created.CreatedAt
		return nil
	})
}

// GetUser returns one profile.
func (s *Store) GetUser(ctx context.Context, id string) (*user.User, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := checkID("user", id); err != nil {
		return nil, err
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundWrap(err, "get user %s", id)
	}
	return &u, nil
}

// GetUserByEmail looks a profile up for login; no caller is required.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, notFoundWrap(err, "get user by email %s", email)
	}
	return &u, nil
}

// ListUsers returns every profile, oldest first.
func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return orEmpty(users), rows.Err()
}

// UpdatePassword replaces a profile's password hash.
func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if _, err := callerID(ctx); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := checkID("user", id); err != nil {
		return err
	}

	return s.write(func() error {
		tag, err := s.pool.Exec(ctx, `UPDATE profiles SET password_hash = $2 WHERE id = $1`, id, passwordHash)
		return execExpectOne(tag, err, "update password %s", id)
	})
}

// DeleteUser removes a profile. Their todos cascade; their clients become
// unassigned.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if _, err := callerID(ctx); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := checkID("user", id); err != nil {
		return err
	}

	return s.write(func() error {
		tag, err := s.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
		return execExpectOne(tag, err, "delete user %s", id)
	})
}
