package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Strob0t/tenantgate/internal/domain"
	"github.com/Strob0t/tenantgate/internal/domain/access"
	"github.com/Strob0t/tenantgate/internal/domain/identity"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
	"github.com/Strob0t/tenantgate/internal/middleware"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func withTier(tier tenant.RoleTier) context.Context {
	rc := &access.RequestContext{Identity: &identity.Identity{ID: "u-1"}}
	if tier != "" {
		rc.Membership = &tenant.Membership{TenantID: "t-1", RoleTier: tier, Status: tenant.MembershipActive}
	}
	return access.WithRequestContext(context.Background(), rc)
}

func TestRequireIdentity(t *testing.T) {
	h := middleware.RequireIdentity(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", http.NoBody))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no identity: status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", http.NoBody).WithContext(withTier(""))
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("identity only: status = %d, want 200", rec.Code)
	}
}

func TestRequireTier(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want int
	}{
		{"no identity", context.Background(), http.StatusUnauthorized},
		{"no membership", withTier(""), http.StatusForbidden},
		{"below", withTier(tenant.TierCustomer), http.StatusForbidden},
		{"equal", withTier(tenant.TierTenant), http.StatusOK},
		{"above", withTier(tenant.TierSystem), http.StatusOK},
	}
	h := middleware.RequireTier(tenant.TierTenant)(okHandler)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody).WithContext(tt.ctx)
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireTierReportsReason(t *testing.T) {
	h := middleware.RequireTier(tenant.TierSystem)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", http.NoBody).WithContext(withTier(tenant.TierTenant)))
	if !strings.Contains(rec.Body.String(), domain.ErrInsufficientTier.Error()) {
		t.Errorf("below tier body = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", http.NoBody).WithContext(withTier("")))
	if !strings.Contains(rec.Body.String(), domain.ErrNoMembership.Error()) {
		t.Errorf("no membership body = %q", rec.Body.String())
	}
}
