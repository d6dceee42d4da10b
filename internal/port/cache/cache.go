// Package cache defines the port for the in-process tenant metadata cache.
package cache

import "github.com/Strob0t/tenantgate/internal/domain/tenant"

// TenantCache holds recently loaded tenants keyed by tenant ID.
type TenantCache interface {
	Get(id string) (*tenant.Tenant, bool)
	Set(t *tenant.Tenant)
	Delete(id string)
}
