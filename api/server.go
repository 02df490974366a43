/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the back-office frontend
  5. Actor:      X-User-ID header recorded on audit entries

ROUTE GROUPS:
  /api/terms/*      Payment terms
  /api/orders/*     Sale orders, installments, reports, contract
  /api/admin/*      Admin operations
  /my/*             Customer portal (access token, no actor)
  /healthz          Liveness probe

SECURITY NOTE:
  The back office has no authentication middleware; deploy it behind the
  company SSO proxy. Portal routes check the order access token.

SEE ALSO:
  - handlers.go, portal.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/insurance-engine/insurance"
)

// ActorHeader names the back-office user performing a request.
const ActorHeader = "X-User-ID"

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins ...string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", ActorHeader},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Back office
	r.Route("/api", func(r chi.Router) {
		r.Use(actorMiddleware)

		r.Route("/terms", func(r chi.Router) {
			r.Get("/", h.ListTerms)
			r.Post("/", h.CreateTerm)
			r.Get("/{id}", h.GetTerm)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Post("/", h.CreateOrder)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetOrder)
				r.Put("/total", h.SetTotal)
				r.Put("/term", h.SelectTerm)
				r.Post("/confirm", h.ConfirmOrder)
				r.Post("/cancel", h.CancelOrder)

				r.Post("/installments", h.AddInstallment)
				r.Put("/installments", h.ReplaceInstallments)
				r.Put("/installments/{seq}", h.EditInstallment)
				r.Delete("/installments/{seq}", h.RemoveInstallment)
				r.Post("/installments/{seq}/pay", h.PayInstallment)

				r.Get("/reconciliation", h.GetReconciliation)
				r.Get("/summary", h.GetSummary)
				r.Get("/adjustment", h.GetAdjustment)
				r.Get("/audit", h.GetAudit)
				r.Get("/schedule.xlsx", h.ExportSchedule)

				r.Put("/contract", h.UpdateContract)
				r.Get("/contract/url", h.GetContractURL)
				r.Post("/contract/email", h.SendContract)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/overdue", h.SweepOverdue)
		})
	})

	// Customer portal
	r.Route("/my", func(r chi.Router) {
		r.Post("/orders/{id}/payment_term", h.UpdatePaymentTerm)
		r.Post("/orders/{id}/installments_preview", h.PreviewInstallments)
		r.Get("/contract/{id}", h.ViewContract)
		r.Post("/contract/{id}/sign", h.SignContract)
	})

	return r
}

// actorMiddleware tags the request context with the back-office user.
func actorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := r.Header.Get(ActorHeader); actor != "" {
			r = r.WithContext(insurance.WithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}
