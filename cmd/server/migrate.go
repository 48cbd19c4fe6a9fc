package main

import (
	"collabtask/internal/migration"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrateUp,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrateDown,
}

var migrateDownSteps int

func init() {
	migrateDownCmd.Flags().IntVar(&migrateDownSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	cfg, log := loadConfig()
	return migration.Up(cfg.MigrateURL(), log)
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	cfg, log := loadConfig()
	return migration.Down(cfg.MigrateURL(), migrateDownSteps, log)
}
