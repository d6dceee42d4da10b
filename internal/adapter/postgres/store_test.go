package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/tenantgate/internal/adapter/postgres"
	"github.com/Strob0t/tenantgate/internal/domain"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
)

// setupStore creates a pgxpool connection, runs all migrations, and returns a
// ready-to-use Store together with the pool for fixture inserts.
func setupStore(t *testing.T) (*postgres.Store, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("requires DATABASE_URL")
	}

	ctx := context.Background()
	if err := postgres.RunMigrations(ctx, dsn); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return postgres.NewStore(pool, 2*time.Second), pool
}

func exec(t *testing.T, pool *pgxpool.Pool, sql string, args ...any) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), sql, args...); err != nil {
		t.Fatalf("exec %q: %v", sql, err)
	}
}

func createProfile(t *testing.T, pool *pgxpool.Pool, name, email string) string {
	t.Helper()
	id := uuid.New().String()
	var fullName any
	if name != "" {
		fullName = name
	}
	exec(t, pool, `INSERT INTO profiles (id, full_name, email) VALUES ($1, $2, $3)`, id, fullName, email)
	return id
}

func createTenant(t *testing.T, pool *pgxpool.Pool, name string) string {
	t.Helper()
	id := uuid.New().String()
	exec(t, pool, `INSERT INTO tenants (id, name, subdomain) VALUES ($1, $2, $3)`,
		id, name, "t-"+id[:8])
	return id
}

func addMembership(t *testing.T, pool *pgxpool.Pool, profileID, tenantID, tier, status string, joined time.Time) string {
	t.Helper()
	id := uuid.New().String()
	exec(t, pool,
		`INSERT INTO tenant_memberships (id, profile_id, tenant_id, role_tier, status, joined_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, profileID, tenantID, tier, status, joined)
	return id
}

func TestStore_Ping(t *testing.T) {
	store, _ := setupStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestStore_ListActiveMemberships(t *testing.T) {
	store, pool := setupStore(t)
	ctx := context.Background()

	profileID := createProfile(t, pool, "Jane Doe", "jane.doe@example.com")
	older := createTenant(t, pool, "Older")
	newer := createTenant(t, pool, "Newer")
	pending := createTenant(t, pool, "Pending")

	now := time.Now().UTC().Truncate(time.Second)
	addMembership(t, pool, profileID, older, "tenant", "active", now.Add(-48*time.Hour))
	addMembership(t, pool, profileID, newer, "customer", "active", now.Add(-time.Hour))
	addMembership(t, pool, profileID, pending, "system", "pending", now)

	got, err := store.ListActiveMemberships(ctx, profileID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 active memberships, got %d", len(got))
	}
	if got[0].TenantID != newer || got[1].TenantID != older {
		t.Errorf("expected most recent first, got %s then %s", got[0].TenantID, got[1].TenantID)
	}
	if got[0].RoleTier != tenant.TierCustomer {
		t.Errorf("tier = %q, want customer", got[0].RoleTier)
	}
	for _, m := range got {
		if !m.IsActive() {
			t.Errorf("membership %s not active", m.ID)
		}
	}
}

func TestStore_ListActiveMemberships_Empty(t *testing.T) {
	store, pool := setupStore(t)
	ctx := context.Background()

	profileID := createProfile(t, pool, "", "nobody@example.com")
	got, err := store.ListActiveMemberships(ctx, profileID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no memberships, got %d", len(got))
	}

	got, err = store.ListActiveMemberships(ctx, "not-a-uuid")
	if err != nil {
		t.Fatalf("list malformed id: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no memberships for malformed id, got %d", len(got))
	}
}

func TestStore_GetTenant(t *testing.T) {
	store, pool := setupStore(t)
	ctx := context.Background()

	id := createTenant(t, pool, "Acme Bookings")
	got, err := store.GetTenant(ctx, id)
	if err != nil {
		t.Fatalf("get tenant: %v", err)
	}
	if got.Name != "Acme Bookings" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Status != tenant.StatusActive {
		t.Errorf("status = %q, want active", got.Status)
	}
	if got.LogoURL != "" {
		t.Errorf("expected empty logo for NULL column, got %q", got.LogoURL)
	}

	if _, err := store.GetTenant(ctx, uuid.New().String()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing tenant: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetTenant(ctx, "garbage"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("malformed id: expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetProfile(t *testing.T) {
	store, pool := setupStore(t)
	ctx := context.Background()

	id := createProfile(t, pool, "", "sam_lee@example.com")
	got, err := store.GetProfile(ctx, id)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.FullName != "" {
		t.Errorf("expected empty full name, got %q", got.FullName)
	}
	if got.Email != "sam_lee@example.com" {
		t.Errorf("email = %q", got.Email)
	}

	if _, err := store.GetProfile(ctx, uuid.New().String()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing profile: expected ErrNotFound, got %v", err)
	}
}

func TestStore_CountPendingBookings(t *testing.T) {
	store, pool := setupStore(t)
	ctx := context.Background()

	tid := createTenant(t, pool, "Counted")
	other := createTenant(t, pool, "Other")
	for range 3 {
		exec(t, pool, `INSERT INTO bookings (tenant_id, status) VALUES ($1, 'pending')`, tid)
	}
	exec(t, pool, `INSERT INTO bookings (tenant_id, status) VALUES ($1, 'confirmed')`, tid)
	exec(t, pool, `INSERT INTO bookings (tenant_id, status) VALUES ($1, 'pending')`, other)

	n, err := store.CountPendingBookings(ctx, tid)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestStore_CanceledContextIsUnavailable(t *testing.T) {
	store, _ := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.GetTenant(ctx, uuid.New().String())
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}
