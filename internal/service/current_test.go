package service

import (
	"context"
	"testing"

	"github.com/Strob0t/tenantgate/internal/domain/access"
	"github.com/Strob0t/tenantgate/internal/domain/identity"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
)

func TestCurrent_WithContext(t *testing.T) {
	store := newFakeStore()
	store.pending["t-1"] = 2
	cur := NewCurrent(NewProfileService(store, discardLogger()), NewPendingService(store, discardLogger()))

	rc := &access.RequestContext{
		Identity:   &identity.Identity{ID: "u-1", Email: "jane.doe@example.com"},
		Membership: &tenant.Membership{ID: "m-1", TenantID: "t-1", RoleTier: tenant.TierTenant, Status: tenant.MembershipActive},
		Tenant:     &tenant.Tenant{ID: "t-1", Name: "Acme"},
	}
	ctx := access.WithRequestContext(context.Background(), rc)

	u := cur.CurrentUser(ctx)
	if u == nil || u.FullName != "Jane Doe" || u.Initials != "JD" {
		t.Fatalf("user = %+v", u)
	}
	tn := cur.CurrentTenant(ctx)
	if tn == nil || tn.Name != "Acme" {
		t.Fatalf("tenant = %+v", tn)
	}
	tn.Name = "Mutated"
	if rc.Tenant.Name != "Acme" {
		t.Error("CurrentTenant must return a copy")
	}
	if n := cur.PendingCount(ctx); n != 2 {
		t.Errorf("pending = %d, want 2", n)
	}
}

func TestCurrent_WithoutContext(t *testing.T) {
	store := newFakeStore()
	cur := NewCurrent(NewProfileService(store, discardLogger()), NewPendingService(store, discardLogger()))
	ctx := context.Background()

	if u := cur.CurrentUser(ctx); u != nil {
		t.Errorf("expected nil user, got %+v", u)
	}
	if tn := cur.CurrentTenant(ctx); tn != nil {
		t.Errorf("expected nil tenant, got %+v", tn)
	}
	if n := cur.PendingCount(ctx); n != 0 {
		t.Errorf("expected 0 pending, got %d", n)
	}
}
