package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/config"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/middleware"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/service"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage user accounts directly in the configured store",
	}
	cmd.AddCommand(newAdminCreateUserCmd(a))
	cmd.AddCommand(newAdminListUsersCmd(a))
	cmd.AddCommand(newAdminResetPasswordCmd(a))
	return cmd
}

// loadAdminDeps opens the configured store and returns an AuthService plus a
// context that acts as the built-in admin.
func loadAdminDeps(ctx context.Context, a *app) (*service.AuthService, context.Context, func(), error) {
	cfg, err := a.loadConfig(config.Overrides{})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	queue, err := connectNATS(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("nats: %w", err)
	}
	deps, err := openStore(ctx, cfg, queue, false)
	if err != nil {
		if queue != nil {
			_ = queue.Close()
		}
		return nil, nil, nil, err
	}

	cleanup := func() {
		deps.close()
		if queue != nil {
			_ = queue.Close()
		}
	}
	authSvc := service.NewAuthService(deps.store, &cfg.Auth)
	return authSvc, middleware.WithUser(ctx, &middleware.DefaultAdmin), cleanup, nil
}

func newAdminCreateUserCmd(a *app) *cobra.Command {
	var email, name, password string
	var admin bool

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a new user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			if name == "" {
				return errors.New("--name is required")
			}
			pass, err := passwordOrPrompt(password, "Password: ")
			if err != nil {
				return err
			}

			role := user.RoleEmployee
			if admin {
				role = user.RoleAdmin
			}

			authSvc, ctx, cleanup, err := loadAdminDeps(cmd.Context(), a)
			if err != nil {
				return err
			}
			defer cleanup()

			u, err := authSvc.CreateUser(ctx, &user.CreateRequest{
				Email:    email,
				Name:     name,
				Password: pass,
				Role:     role,
			})
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(os.Stderr, "User created: %s (id=%s, role=%s)\n", u.Email, u.ID, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email address (required)")
	cmd.Flags().StringVar(&name, "name", "", "user display name (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted if not provided)")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant admin role")
	return cmd
}

func newAdminListUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list-users",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			authSvc, ctx, cleanup, err := loadAdminDeps(cmd.Context(), a)
			if err != nil {
				return err
			}
			defer cleanup()

			users, err := authSvc.ListUsers(ctx)
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tCREATED")
			for i := range users {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					users[i].ID, users[i].Email, users[i].Name, users[i].Role,
					users[i].CreatedAt.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}
}

func newAdminResetPasswordCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			pass, err := passwordOrPrompt(password, "New password: ")
			if err != nil {
				return err
			}

			authSvc, ctx, cleanup, err := loadAdminDeps(cmd.Context(), a)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := authSvc.ResetPassword(ctx, email, user.ResetPasswordRequest{Password: pass}); err != nil {
				return fmt.Errorf("reset password: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Password reset successfully for %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "new password (prompted if not provided)")
	return cmd
}

// passwordOrPrompt returns flagValue, or asks twice on the terminal when it
// is empty.
func passwordOrPrompt(flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	pass, err := promptPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if pass != confirm {
		return "", errors.New("passwords do not match")
	}
	return pass, nil
}

// promptPassword reads a password from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
