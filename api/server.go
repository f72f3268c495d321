/*
server.go - HTTP router and middleware configuration

ROUTER: chi
  Lightweight, context-based, RESTful route patterns.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for dashboards

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

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/payees", func(r chi.Router) {
			r.Get("/", h.ListPayees)
			r.Post("/", h.RegisterPayee)
			r.Get("/{id}", h.GetPayee)
			r.Put("/{id}", h.UpdatePayee)
			r.Post("/{id}/withdraw", h.Withdraw)
			r.Post("/{id}/advance", h.RequestAdvance)
			r.Post("/{id}/settle", h.Settle)
		})

		r.Route("/pool", func(r chi.Router) {
			r.Get("/", h.GetPool)
			r.Post("/fund", h.Fund)
			r.Post("/refund", h.Refund)
			r.Post("/emergency-withdraw", h.EmergencyWithdraw)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/pause", h.Pause)
			r.Post("/unpause", h.Unpause)
		})

		r.Get("/events", h.ListEvents)
	})

	return r
}
