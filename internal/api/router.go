package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// Network discovery
			r.Post("/discovery/scan", s.handleDiscoveryScan)

			// Device endpoints
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Post("/", s.handleCreateDevice)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Patch("/", s.handleUpdateDevice)
					r.Delete("/", s.handleDeleteDevice)
					r.Get("/state", s.handleGetDeviceState)
					r.Get("/info", s.handleGetDeviceInfo)

					// Session control
					r.Post("/connect", s.handleConnect)
					r.Post("/disconnect", s.handleDisconnect)

					// Commands
					r.Put("/power", s.handlePower)
					r.Post("/key", s.handleSendKey)
					r.Post("/source", s.handleLaunchSource)

					// PIN pairing
					r.Route("/pair", func(r chi.Router) {
						r.Post("/start", s.handlePairStart)
						r.Post("/submit", s.handlePairSubmit)
						r.Post("/cancel", s.handlePairCancel)
					})
				})
			})

			// WebSocket event stream (auth via token query parameter)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"devices": s.sessions.Count(),
	})
}
