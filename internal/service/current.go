package service

import (
	"context"

	"github.com/Strob0t/tenantgate/internal/domain/access"
	"github.com/Strob0t/tenantgate/internal/domain/identity"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
)

// Current answers "who and which tenant" for downstream handlers from the
// request context attached by the gatekeeper.
type Current struct {
	profiles *ProfileService
	pending  *PendingService
}

// NewCurrent creates a new Current.
func NewCurrent(profiles *ProfileService, pending *PendingService) *Current {
	return &Current{profiles: profiles, pending: pending}
}

// CurrentUser returns the caller's display profile, or nil on an
// unauthenticated request.
func (c *Current) CurrentUser(ctx context.Context) *identity.Profile {
	rc := access.FromContext(ctx)
	if rc == nil || rc.Identity == nil {
		return nil
	}
	p := c.profiles.Resolve(ctx, *rc.Identity)
	return &p
}

// CurrentTenant returns the resolved tenant, or nil when none.
func (c *Current) CurrentTenant(ctx context.Context) *tenant.Tenant {
	rc := access.FromContext(ctx)
	if rc == nil || rc.Tenant == nil {
		return nil
	}
	t := *rc.Tenant
	return &t
}

// PendingCount returns the resolved tenant's pending bookings, or 0.
func (c *Current) PendingCount(ctx context.Context) int {
	return c.pending.Count(ctx, access.FromContext(ctx).TenantID())
}
