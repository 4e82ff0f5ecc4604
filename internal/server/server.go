/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the
backend and Gemini clients into the AI endpoint handlers.
*/
package server

import (
	"net/http"
	"time"

	"PantauSiKecil_AI/internal/assistant"
	"PantauSiKecil_AI/internal/backend"
	"PantauSiKecil_AI/internal/config"
	"PantauSiKecil_AI/internal/geminiservice"
)

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// cfg is the validated startup configuration.
	cfg *config.Config

	// assistant serves /chat and the recommendation endpoints.
	assistant *assistant.Handler

	// startedAt is reported by the health endpoint.
	startedAt time.Time
}

// NewServer initializes a new Server instance and returns a configured *http.Server.
func NewServer(cfg *config.Config) *http.Server {
	newApp := &Server{
		cfg: cfg,
		assistant: assistant.NewHandler(
			backend.NewClient(cfg),
			geminiservice.NewClient(cfg),
		),
		startedAt: time.Now(),
	}

	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newApp.RegisterRoutes(),
		IdleTimeout:  cfg.IdleTimeout,  // Time to wait for the next request on keep-alive connections.
		ReadTimeout:  cfg.ReadTimeout,  // Maximum duration for reading the entire request.
		WriteTimeout: cfg.WriteTimeout, // Must outlive the Gemini timeout.
	}
}
