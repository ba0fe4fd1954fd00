package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/postgres"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/config"
)

func newMigrateCmd(a *app) *cobra.Command {
	var dsn string

	resolveDSN := func(cmd *cobra.Command) (string, error) {
		var o config.Overrides
		if cmd.Flags().Changed("dsn") {
			o.DSN = &dsn
		}
		cfg, err := a.loadConfig(o)
		if err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		if cfg.Postgres.DSN == "" {
			return "", errors.New("no database configured: set DATABASE_URL or --dsn")
		}
		return cfg.Postgres.DSN, nil
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", "", "PostgreSQL connection string")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := resolveDSN(cmd)
			if err != nil {
				return err
			}
			if err := postgres.RunMigrations(cmd.Context(), d); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Migrations applied.")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return errors.New("--steps must be at least 1")
			}
			d, err := resolveDSN(cmd)
			if err != nil {
				return err
			}
			if err := postgres.RollbackMigrations(cmd.Context(), d, steps); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Rolled back %d migration(s).\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	ver := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := resolveDSN(cmd)
			if err != nil {
				return err
			}
			v, err := postgres.MigrationVersion(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}

	cmd.AddCommand(up, down, ver)
	return cmd
}
