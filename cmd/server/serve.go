package main

import (
	"collabtask/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log := loadConfig()

	s, err := server.Init(cfg, log)
	if err != nil {
		log.WithError(err).Error("❌ Server initialization failed")
		return err
	}

	if err := s.Run(); err != nil {
		log.WithError(err).Error("❌ Server stopped with error")
		return err
	}
	return nil
}
