package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/config"
)

// app carries the persistent flags shared by every subcommand.
type app struct {
	configPath string
}

func (a *app) loadConfig(o config.Overrides) (*config.Config, error) {
	return config.LoadWithOverrides(a.configPath, o)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "dashboard",
		Short:        "Agency dashboard: tasks, clients and employees",
		Version:      version,
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Serve the API on the local SQLite slot
  dashboard serve

  # Serve against PostgreSQL
  DATABASE_URL=postgres://... dashboard serve --store remote

  # Apply schema migrations
  dashboard migrate up

  # Create an admin account
  dashboard admin create-user --email boss@agency.test --name Boss --admin
`),
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultConfigFile, "path to the YAML config file")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newMigrateCmd(a))
	cmd.AddCommand(newAdminCmd(a))
	return cmd
}
