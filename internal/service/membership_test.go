package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Strob0t/tenantgate/internal/domain"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
)

func TestMembershipService_Resolve(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	store.memberships = []tenant.Membership{
		{ID: "m-1", ProfileID: "u-1", TenantID: "t-old", RoleTier: tenant.TierTenant, Status: tenant.MembershipActive, JoinedAt: now.Add(-time.Hour)},
		{ID: "m-2", ProfileID: "u-1", TenantID: "t-new", RoleTier: tenant.TierCustomer, Status: tenant.MembershipActive, JoinedAt: now},
		{ID: "m-3", ProfileID: "u-1", TenantID: "t-gone", RoleTier: tenant.TierSystem, Status: tenant.MembershipRemoved, JoinedAt: now.Add(time.Hour)},
	}
	svc := NewMembershipService(store)
	ctx := context.Background()

	m, err := svc.Resolve(ctx, "u-1", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m.TenantID != "t-new" {
		t.Errorf("tenant = %q, want most recent t-new", m.TenantID)
	}

	m, err = svc.Resolve(ctx, "u-1", "t-old")
	if err != nil {
		t.Fatalf("resolve preferred: %v", err)
	}
	if m.TenantID != "t-old" || m.RoleTier != tenant.TierTenant {
		t.Errorf("preferred membership not selected: %+v", m)
	}

	m, err = svc.Resolve(ctx, "u-1", "t-gone")
	if err != nil {
		t.Fatalf("resolve inactive preferred: %v", err)
	}
	if m.TenantID != "t-new" {
		t.Errorf("inactive preferred tenant must be ignored, got %q", m.TenantID)
	}

	if _, err := svc.Resolve(ctx, "u-2", ""); !errors.Is(err, domain.ErrNoMembership) {
		t.Errorf("expected ErrNoMembership, got %v", err)
	}
}

func TestMembershipService_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.membershipErr = errors.New("connection refused")
	svc := NewMembershipService(store)

	_, err := svc.Resolve(context.Background(), "u-1", "")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if errors.Is(err, domain.ErrNoMembership) {
		t.Error("outage must not look like a missing membership")
	}

	if _, err := svc.HasActive(context.Background(), "u-1", "t-1"); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("HasActive: expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestMembershipService_HasActive(t *testing.T) {
	store := newFakeStore()
	store.memberships = []tenant.Membership{
		{ID: "m-1", ProfileID: "u-1", TenantID: "t-1", RoleTier: tenant.TierTenant, Status: tenant.MembershipActive},
		{ID: "m-2", ProfileID: "u-1", TenantID: "t-2", RoleTier: tenant.TierTenant, Status: tenant.MembershipPending},
	}
	svc := NewMembershipService(store)
	ctx := context.Background()

	if ok, _ := svc.HasActive(ctx, "u-1", "t-1"); !ok {
		t.Error("expected active membership in t-1")
	}
	if ok, _ := svc.HasActive(ctx, "u-1", "t-2"); ok {
		t.Error("pending membership must not count")
	}
}
