package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/tenantgate/internal/domain/tenant"
	"github.com/Strob0t/tenantgate/internal/middleware"
)

// MountRoutes registers the gateway's own routes on r. Every other path is
// served by upstream, or answered 404 when upstream is nil.
func MountRoutes(r chi.Router, h *Handlers, upstream http.Handler) {
	r.Get("/health", h.Health)
	r.Get("/forbidden", h.Forbidden)
	r.Get("/unavailable", h.Unavailable)

	r.Post("/auth/logout", h.Logout)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireIdentity)
		r.Get("/me", h.Me)
		r.Post("/tenant/select", h.SelectTenant)
		r.With(middleware.RequireTier(tenant.TierSystem)).
			Post("/admin/tenants/{tenantID}/invalidate", h.InvalidateTenant)
	})

	if upstream != nil {
		r.NotFound(upstream.ServeHTTP)
	}
}
