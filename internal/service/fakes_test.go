package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Strob0t/tenantgate/internal/domain"
	"github.com/Strob0t/tenantgate/internal/domain/identity"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeVerifier returns a fixed session or error and counts calls.
type fakeVerifier struct {
	mu    sync.Mutex
	calls int
	sess  *identity.Session
	err   error
	block bool // wait for ctx cancellation
}

func (f *fakeVerifier) Verify(ctx context.Context, _ string) (*identity.Session, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.sess, f.err
}

func (f *fakeVerifier) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeStore implements every database read port in memory.
type fakeStore struct {
	mu          sync.Mutex
	profiles    map[string]identity.Profile
	tenants     map[string]tenant.Tenant
	memberships []tenant.Membership
	pending     map[string]int

	profileErr    error
	tenantErr     error
	membershipErr error
	pendingErr    error

	tenantCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: make(map[string]identity.Profile),
		tenants:  make(map[string]tenant.Tenant),
		pending:  make(map[string]int),
	}
}

func (s *fakeStore) GetProfile(_ context.Context, id string) (*identity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *fakeStore) GetTenant(_ context.Context, id string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantCalls++
	if s.tenantErr != nil {
		return nil, s.tenantErr
	}
	t, ok := s.tenants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *fakeStore) ListActiveMemberships(_ context.Context, profileID string) ([]tenant.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.membershipErr != nil {
		return nil, s.membershipErr
	}
	var out []tenant.Membership
	for _, m := range s.memberships {
		if m.ProfileID == profileID && m.IsActive() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) CountPendingBookings(_ context.Context, tenantID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingErr != nil {
		return 0, s.pendingErr
	}
	return s.pending[tenantID], nil
}

// mapCache is a synchronous TenantCache.
type mapCache struct {
	mu sync.Mutex
	m  map[string]tenant.Tenant
}

func newMapCache() *mapCache { return &mapCache{m: make(map[string]tenant.Tenant)} }

func (c *mapCache) Get(id string) (*tenant.Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.m[id]
	if !ok {
		return nil, false
	}
	return &t, true
}

func (c *mapCache) Set(t *tenant.Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[t.ID] = *t
}

func (c *mapCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, id)
}
