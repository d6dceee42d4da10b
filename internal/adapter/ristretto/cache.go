// Package ristretto implements the tenant cache port using dgraph-io/ristretto
// as an in-process cache with per-entry TTL.
package ristretto

import (
	"github.com/dgraph-io/ristretto/v2"

	"github.com/Strob0t/tenantgate/internal/config"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
)

// Cache stores tenant metadata by value so callers never share an entry.
type Cache struct {
	c   *ristretto.Cache[string, tenant.Tenant]
	cfg config.Cache
}

// New creates a ristretto-backed tenant cache. Each tenant costs 1, so
// MaxTenants bounds the number of cached entries.
func New(cfg config.Cache) (*Cache, error) {
	maxTenants := cfg.MaxTenants
	if maxTenants < 1 {
		maxTenants = 1
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, tenant.Tenant]{
		NumCounters: maxTenants * 10, // ~10x expected items
		MaxCost:     maxTenants,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c, cfg: cfg}, nil
}

// Get returns a copy of the cached tenant.
func (c *Cache) Get(id string) (*tenant.Tenant, bool) {
	t, found := c.c.Get(id)
	if !found {
		return nil, false
	}
	return &t, true
}

// Set stores a copy of t for the configured TTL. Writes are buffered;
// call Wait to make them visible immediately.
func (c *Cache) Set(t *tenant.Tenant) {
	if t == nil {
		return
	}
	c.c.SetWithTTL(t.ID, *t, 1, c.cfg.TenantTTL)
}

// Delete removes the tenant from the cache.
func (c *Cache) Delete(id string) {
	c.c.Del(id)
}

// Wait blocks until buffered writes have been applied.
func (c *Cache) Wait() {
	c.c.Wait()
}

// Close shuts down the cache and releases resources.
func (c *Cache) Close() {
	c.c.Close()
}
