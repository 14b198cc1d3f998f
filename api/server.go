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
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/members/*        Member accounts
  /api/companies/*      Company accounts and workforce
  /api/drafts/*         Plan drafts
  /api/plans/*          Plan lifecycle and cooperation membership
  /api/cooperations/*   Cooperation management
  /api/consumption/*    Private and productive consumption
  /api/admin/*          Activation queue and payout cycle

SECURITY NOTE:
  No authentication middleware. Deploy behind an authenticating proxy.

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
		// Member routes
		r.Route("/members", func(r chi.Router) {
			r.Post("/", h.RegisterMember)
			r.Get("/{id}", h.GetMember)
			r.Get("/{id}/transfers", h.GetMemberTransfers)
		})

		// Company routes
		r.Route("/companies", func(r chi.Router) {
			r.Post("/", h.RegisterCompany)
			r.Get("/{id}", h.GetCompany)
			r.Post("/{id}/workers", h.AddWorker)
			r.Post("/{id}/hours", h.RegisterHours)
		})

		// Draft routes
		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", h.CreateDraft)
			r.Put("/{id}", h.UpdateDraft)
			r.Delete("/{id}", h.DeleteDraft)
			r.Post("/{id}/file", h.FileDraft)
		})

		// Plan routes
		r.Route("/plans", func(r chi.Router) {
			r.Get("/{id}", h.GetPlan)
			r.Post("/{id}/approve", h.ApprovePlan)
			r.Post("/{id}/reject", h.RejectPlan)
			r.Post("/{id}/hide", h.HidePlan)
			r.Post("/{id}/revoke", h.RevokePlan)

			r.Route("/{id}/cooperation", func(r chi.Router) {
				r.Post("/request", h.RequestCooperation)
				r.Post("/accept", h.AcceptCooperation)
				r.Post("/deny", h.DenyCooperation)
				r.Post("/cancel", h.CancelCooperationRequest)
				r.Post("/end", h.EndCooperation)
			})
		})

		// Cooperation routes
		r.Route("/cooperations", func(r chi.Router) {
			r.Post("/", h.CreateCooperation)
			r.Get("/{id}", h.GetCooperation)
			r.Get("/{id}/plans", h.GetCooperationPlans)
			r.Post("/{id}/coordination", h.RequestCoordinationTransfer)
		})
		r.Post("/coordination-transfers/{id}/accept", h.AcceptCoordinationTransfer)

		// Consumption routes
		r.Route("/consumption", func(r chi.Router) {
			r.Post("/private", h.RegisterPrivateConsumption)
			r.Post("/productive", h.RegisterProductiveConsumption)
		})

		// Economy routes
		r.Get("/payout-factor", h.GetPayoutFactor)
		r.Get("/statistics", h.GetStatistics)

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/activate-plans", h.TriggerActivation)
			r.Post("/update", h.TriggerPayoutCycle)
		})
	})

	return r
}
