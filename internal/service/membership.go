package service

import (
	"context"
	"fmt"

	tgotel "github.com/Strob0t/tenantgate/internal/adapter/otel"
	"github.com/Strob0t/tenantgate/internal/domain"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
	"github.com/Strob0t/tenantgate/internal/port/database"
)

// MembershipService resolves the single active membership a request acts
// under. Results are never cached.
type MembershipService struct {
	store database.MembershipStore
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(store database.MembershipStore) *MembershipService {
	return &MembershipService{store: store}
}

// Resolve returns the authoritative active membership of profileID.
// It returns domain.ErrNoMembership when none exists and
// domain.ErrUpstreamUnavailable when the store cannot answer.
func (s *MembershipService) Resolve(ctx context.Context, profileID, preferredTenantID string) (*tenant.Membership, error) {
	ctx, span := tgotel.StartMembershipSpan(ctx, profileID)

	all, err := s.store.ListActiveMemberships(ctx, profileID)
	if err != nil {
		err = fmt.Errorf("resolve membership for %s: %w: %w", profileID, domain.ErrUpstreamUnavailable, err)
		tgotel.EndSpan(span, err)
		return nil, err
	}
	tgotel.EndSpan(span, nil)

	m, ok := tenant.SelectActive(all, preferredTenantID)
	if !ok {
		return nil, domain.ErrNoMembership
	}
	return &m, nil
}

// HasActive reports whether profileID holds an active membership in tenantID.
func (s *MembershipService) HasActive(ctx context.Context, profileID, tenantID string) (bool, error) {
	all, err := s.store.ListActiveMemberships(ctx, profileID)
	if err != nil {
		return false, fmt.Errorf("list memberships for %s: %w: %w", profileID, domain.ErrUpstreamUnavailable, err)
	}
	for _, m := range all {
		if m.IsActive() && m.TenantID == tenantID {
			return true, nil
		}
	}
	return false, nil
}
