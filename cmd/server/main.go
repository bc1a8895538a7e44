// Package main implements the entry point for the taskhub API server,
// which handles user accounts, organization invitations and task
// management.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/taskhub/taskhub-api/internal/config"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	router := app.setupRouter()
	if err := app.startHTTPServer(context.Background(), router); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and wires the application.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	app, err := newApplication(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}

	app.logger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	return app, nil
}
