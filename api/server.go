/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. CleanPath:     Normalizes request paths
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for frontend
  5. RequestLogger: Structured request logging (httplog + slog)

ROUTE GROUPS:
  /api/departments/*    Department management
  /api/employees/*      Employee management and balances
  /api/leave-types/*    Leave type catalog
  /api/requests/*       Leave request lifecycle
  /api/holidays/*       Holiday calendar
  /api/sprints/*        Sprint planning and impact reports
  /api/reports/*        Arbitrary-window impact reports
  /api/admin/*          Admin operations
  /health               Liveness probe

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.CleanPath)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Employee-ID", "X-Roles"},
		AllowCredentials: true,
	}))
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Department routes
		r.Route("/departments", func(r chi.Router) {
			r.Get("/", h.ListDepartments)
			r.Post("/", h.CreateDepartment)
		})

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/balance", h.GetBalance)
			r.Get("/{id}/balances", h.GetTypeBalances)
		})

		// Leave type routes
		r.Route("/leave-types", func(r chi.Router) {
			r.Get("/", h.ListLeaveTypes)
			r.Post("/", h.CreateLeaveType)
			r.Post("/defaults", h.SeedLeaveTypes)
		})

		// Leave request routes
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", h.SubmitRequest)
			r.Get("/mine", h.ListMyRequests)
			r.Get("/inbox", h.Inbox)
			r.Get("/team", h.TeamLeaves)
			r.Get("/company", h.CompanyLeaves)
			r.Get("/{id}", h.GetRequest)
			r.Get("/{id}/history", h.RequestHistory)
			r.Post("/{id}/approve", h.ApproveRequest)
			r.Post("/{id}/reject", h.RejectRequest)
			r.Post("/{id}/cancel", h.CancelRequest)
		})

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
		})

		// Sprint routes
		r.Route("/sprints", func(r chi.Router) {
			r.Get("/", h.ListSprints)
			r.Post("/", h.CreateSprint)
			r.Post("/plan", h.PlanSprints)
			r.Get("/{id}/impact", h.SprintImpact)
		})

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/impact", h.WindowImpact)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/entitlements", h.EnsureEntitlements)
		})
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
