// Package tenant defines the tenant and tenant-membership domain models.
package tenant

import (
	"sort"
	"time"
)

// Status is the lifecycle state of a tenant.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusArchived  Status = "archived"
)

// Tenant is an organization-level account boundary. The gateway references
// tenants and never mutates them.
type Tenant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Subdomain    string    `json:"subdomain,omitempty"`
	LogoURL      string    `json:"logo_url,omitempty"`
	BillingEmail string    `json:"billing_email,omitempty"`
	Description  string    `json:"description,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MembershipStatus is the state of a profile's membership in a tenant.
type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipPending   MembershipStatus = "pending"
	MembershipSuspended MembershipStatus = "suspended"
	MembershipRemoved   MembershipStatus = "removed"
)

// Membership joins a profile to a tenant with a role tier.
type Membership struct {
	ID        string           `json:"id"`
	ProfileID string           `json:"profile_id"`
	TenantID  string           `json:"tenant_id"`
	RoleTier  RoleTier         `json:"role_tier"`
	Status    MembershipStatus `json:"status"`
	JoinedAt  time.Time        `json:"joined_at"`
}

// IsActive reports whether the membership grants access.
func (m *Membership) IsActive() bool {
	return m.Status == MembershipActive
}

// SelectActive picks the single authoritative membership out of a set.
// Only active rows are eligible. A membership in preferredTenantID wins;
// otherwise the most recently joined, with ties broken by ascending ID.
// Returns false when no active membership exists.
func SelectActive(memberships []Membership, preferredTenantID string) (Membership, bool) {
	active := make([]Membership, 0, len(memberships))
	for _, m := range memberships {
		if m.IsActive() {
			active = append(active, m)
		}
	}
	if len(active) == 0 {
		return Membership{}, false
	}

	sort.SliceStable(active, func(i, j int) bool {
		if !active[i].JoinedAt.Equal(active[j].JoinedAt) {
			return active[i].JoinedAt.After(active[j].JoinedAt)
		}
		return active[i].ID < active[j].ID
	})

	if preferredTenantID != "" {
		for _, m := range active {
			if m.TenantID == preferredTenantID {
				return m, true
			}
		}
	}
	return active[0], true
}
