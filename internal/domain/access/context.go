// Package access carries the per-request identity and tenant decision made by
// the gatekeeper to downstream handlers.
package access

import (
	"context"

	"github.com/Strob0t/tenantgate/internal/domain/identity"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
)

// RequestContext is built fresh for each request and never cached.
type RequestContext struct {
	Identity   *identity.Identity
	Membership *tenant.Membership
	Tenant     *tenant.Tenant
}

// TenantID returns the resolved tenant ID, or "" when none.
func (rc *RequestContext) TenantID() string {
	if rc == nil || rc.Membership == nil {
		return ""
	}
	return rc.Membership.TenantID
}

// RoleTier returns the resolved role tier, or "" when none.
func (rc *RequestContext) RoleTier() tenant.RoleTier {
	if rc == nil || rc.Membership == nil {
		return ""
	}
	return rc.Membership.RoleTier
}

type requestCtxKey struct{}

// WithRequestContext stores rc in ctx.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestCtxKey{}, rc)
}

// FromContext returns the RequestContext stored in ctx, or nil.
func FromContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestCtxKey{}).(*RequestContext)
	return rc
}
