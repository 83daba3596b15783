/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/forecasts/*   Demand forecasting and CSV export
  /api/projects/*    Projects, schedules, labor plans
  /api/schedules/*   Phase management
  /api/crew-types/*  Crew type tags

SECURITY NOTE:
  No authentication middleware. Auth is owned by the excluded outer
  layers; all endpoints here are public.

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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Forecast routes
		r.Route("/forecasts", func(r chi.Router) {
			r.Get("/company-wide", h.CompanyForecast)
			r.Get("/company-wide/export", h.ExportCompanyForecast)
			r.Get("/project/{id}", h.ProjectForecast)
		})

		// Project routes
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Get("/{id}", h.GetProject)
			r.Post("/{id}/schedule", h.CreateSchedule)
			r.Get("/{id}/labor-plan", h.GetLaborPlan)
			r.Put("/{id}/labor-plan", h.PutLaborPlan)
		})

		// Schedule routes
		r.Route("/schedules", func(r chi.Router) {
			r.Post("/{id}/phases", h.CreatePhase)
		})

		// Crew type routes
		r.Route("/crew-types", func(r chi.Router) {
			r.Get("/", h.ListCrewTypes)
			r.Post("/", h.CreateCrewType)
		})
	})

	return r
}
