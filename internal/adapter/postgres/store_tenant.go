package postgres

import (
	"context"

	"github.com/Strob0t/tenantgate/internal/domain/tenant"
)

// GetTenant loads tenant metadata. A dangling or malformed id yields
// domain.ErrNotFound.
func (s *Store) GetTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var t tenant.Tenant
	var subdomain, logo, billing, desc *string
	var status string
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, subdomain, logo_url, billing_email, description, status, created_at, updated_at
		 FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &subdomain, &logo, &billing, &desc, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get tenant %s", id)
	}
	t.Subdomain = deref(subdomain)
	t.LogoURL = deref(logo)
	t.BillingEmail = deref(billing)
	t.Description = deref(desc)
	t.Status = tenant.Status(status)
	return &t, nil
}
