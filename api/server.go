/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the admin frontend

SECURITY NOTE:
  No authentication middleware. Authn/authz belong to the platform
  gateway, not this service.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Post("/{id}/clock-in", h.ClockIn)
			r.Post("/{id}/clock-out", h.ClockOut)
			r.Get("/{id}/attendance", h.ListAttendance)
			r.Get("/{id}/attendance/summary", h.GetSummary)
			r.Post("/{id}/offboarding", h.CreateOffboarding)
			r.Post("/{id}/leaves", h.CreateLeave)
		})

		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/", h.CreateShift)
			r.Get("/{id}", h.GetShift)
		})

		// Assignment routes
		r.Post("/assignments", h.CreateAssignment)

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/close-day", h.CloseDay)
		})
	})

	return r
}
