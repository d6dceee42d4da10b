package http

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/Strob0t/tenantgate/internal/domain/access"
	"github.com/Strob0t/tenantgate/internal/domain/identity"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
)

type meResponse struct {
	Profile      *identity.Profile `json:"profile"`
	Tenant       *tenant.Tenant    `json:"tenant,omitempty"`
	RoleTier     tenant.RoleTier   `json:"role_tier,omitempty"`
	PendingCount int               `json:"pending_count"`
}

// Me returns the caller's profile, tenant, tier and pending work count.
// Profile and pending count are read concurrently; both fail open.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	rc := access.FromContext(r.Context())
	if rc == nil || rc.Identity == nil {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}

	resp := meResponse{
		Tenant:   h.Current.CurrentTenant(r.Context()),
		RoleTier: rc.RoleTier(),
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		resp.Profile = h.Current.CurrentUser(ctx)
		return nil
	})
	g.Go(func() error {
		resp.PendingCount = h.Current.PendingCount(ctx)
		return nil
	})
	_ = g.Wait()

	writeJSON(w, http.StatusOK, resp)
}
