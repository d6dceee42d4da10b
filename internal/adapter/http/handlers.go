package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/Strob0t/tenantgate/internal/domain/identity"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
	"github.com/Strob0t/tenantgate/internal/port/database"
	"github.com/Strob0t/tenantgate/internal/port/messagequeue"
	"github.com/Strob0t/tenantgate/internal/session"
)

// healthTimeout bounds each dependency probe of the health endpoint.
const healthTimeout = 2 * time.Second

// CurrentReader exposes the caller's profile, tenant and pending work.
type CurrentReader interface {
	CurrentUser(ctx context.Context) *identity.Profile
	CurrentTenant(ctx context.Context) *tenant.Tenant
	PendingCount(ctx context.Context) int
}

// MembershipChecker answers whether a profile belongs to a tenant.
type MembershipChecker interface {
	HasActive(ctx context.Context, profileID, tenantID string) (bool, error)
}

// TenantInvalidator drops cached tenant metadata on this replica.
type TenantInvalidator interface {
	Invalidate(id string)
}

// Handlers holds the dependencies of the gateway's HTTP handlers.
type Handlers struct {
	Current     CurrentReader
	Memberships MembershipChecker
	Codec       *session.Codec
	DB          database.Pinger
	Bus         messagequeue.Subscriber // nil when NATS is not configured
	Tenants     TenantInvalidator
	Publisher   messagequeue.Publisher // nil when NATS is not configured
	TenantTopic string                 // subject of tenant update events
	PortalURL   string
	Log         *slog.Logger
}
