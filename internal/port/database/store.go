// Package database defines the read ports into the identity/membership store.
// The gateway never writes through these interfaces.
package database

import (
	"context"

	"github.com/Strob0t/tenantgate/internal/domain/identity"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
)

// MembershipStore lists tenant memberships.
type MembershipStore interface {
	// ListActiveMemberships returns every membership with status active
	// for the profile. An empty result is not an error.
	ListActiveMemberships(ctx context.Context, profileID string) ([]tenant.Membership, error)
}

// TenantStore reads tenant metadata.
type TenantStore interface {
	// GetTenant returns domain.ErrNotFound for a dangling id.
	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)
}

// ProfileStore reads display profiles.
type ProfileStore interface {
	// GetProfile returns domain.ErrNotFound when no profile row exists.
	GetProfile(ctx context.Context, id string) (*identity.Profile, error)
}

// BookingStore answers tenant-scoped booking queries.
type BookingStore interface {
	CountPendingBookings(ctx context.Context, tenantID string) (int, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
