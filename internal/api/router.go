package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haandev/iskidms/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.sessionMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check and metrics (no auth required)
		r.Get("/health", s.handleHealth)
		r.Handle("/metrics", s.metricsHandler())

		// Public auth endpoints
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Any authenticated user
		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(auth.RequireAny))

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/change-password", s.handleChangePassword)
		})

		// Agent surface: own devices only
		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(auth.RequireAgent))

			r.Get("/devices", s.handleListOwnDevices)
			r.Post("/devices", s.handleCreateOwnDevice)
		})

		// Admin surface
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireRole(auth.RequireAdmin))

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListAllDevices)
				r.Post("/", s.handleCreateDeviceForAgent)
				r.Get("/pending", s.handleListPendingDevices)
				r.Post("/import", s.handleImportDevices)

				r.Route("/{id}", func(r chi.Router) {
					r.Post("/approve", s.handleApproveDevice)
					r.Delete("/", s.handleDeleteDevice)
					r.Put("/owner", s.handleTransferDevice)
					r.Delete("/owner", s.handleReleaseDevice)
				})
			})

			r.Route("/agents", func(r chi.Router) {
				r.Get("/", s.handleListAgents)
				r.Post("/", s.handleCreateAgent)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetAgent)
					r.Delete("/", s.handleDeleteAgent)
					r.Post("/password", s.handleChangeAgentPassword)
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
