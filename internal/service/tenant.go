package service

import (
	"context"
	"fmt"
	"log/slog"

	tgotel "github.com/Strob0t/tenantgate/internal/adapter/otel"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
	"github.com/Strob0t/tenantgate/internal/port/cache"
	"github.com/Strob0t/tenantgate/internal/port/database"
	"github.com/Strob0t/tenantgate/internal/port/messagequeue"
)

// TenantService loads tenant metadata, fronted by an optional cache.
type TenantService struct {
	store   database.TenantStore
	cache   cache.TenantCache
	metrics *tgotel.Metrics
	log     *slog.Logger
}

// NewTenantService creates a new TenantService. c may be nil to disable caching.
func NewTenantService(store database.TenantStore, c cache.TenantCache, metrics *tgotel.Metrics, log *slog.Logger) *TenantService {
	return &TenantService{store: store, cache: c, metrics: metrics, log: log}
}

// Load returns the tenant with the given ID. A dangling ID yields
// domain.ErrNotFound. Failed lookups are not cached.
func (s *TenantService) Load(ctx context.Context, id string) (*tenant.Tenant, error) {
	if s.cache != nil {
		t, ok := s.cache.Get(id)
		s.metrics.RecordCacheLookup(ctx, ok)
		if ok {
			return t, nil
		}
	}

	ctx, span := tgotel.StartTenantSpan(ctx, id)
	t, err := s.store.GetTenant(ctx, id)
	tgotel.EndSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("load tenant %s: %w", id, err)
	}

	if s.cache != nil {
		s.cache.Set(t)
	}
	return t, nil
}

// Invalidate drops the cached entry of a tenant.
func (s *TenantService) Invalidate(id string) {
	if s.cache != nil {
		s.cache.Delete(id)
	}
}

// HandleTenantUpdated is the messagequeue.Handler for tenant change events.
func (s *TenantService) HandleTenantUpdated(ctx context.Context, subject string, data []byte) error {
	p, err := messagequeue.DecodeTenantUpdated(subject, data)
	if err != nil {
		return err
	}
	s.Invalidate(p.TenantID)
	s.metrics.RecordInvalidation(ctx)
	s.log.DebugContext(ctx, "tenant cache invalidated", "tenant_id", p.TenantID, "deleted", p.Deleted)
	return nil
}
