// Package main is the CollabTask API server.
package main

import (
	"os"

	"collabtask/internal/config"
	"collabtask/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// @title           CollabTask API
// @version         1.0
// @description     Task and project collaboration backend: accounts, projects with members, Kanban tasks, comments.

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "collabtask",
	Short:        "CollabTask - projects, tasks and comments for small teams",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func loadConfig() (*config.Config, *logrus.Logger) {
	cfg := config.Load()
	return cfg, logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
}
