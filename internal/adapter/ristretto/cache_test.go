package ristretto_test

import (
	"testing"
	"time"

	"github.com/Strob0t/tenantgate/internal/adapter/ristretto"
	"github.com/Strob0t/tenantgate/internal/config"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
)

func newCache(t *testing.T, ttl time.Duration) *ristretto.Cache {
	t.Helper()
	c, err := ristretto.New(config.Cache{TenantTTL: ttl, MaxTenants: 100})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestCache_SetGetDelete(t *testing.T) {
	c := newCache(t, time.Minute)

	c.Set(&tenant.Tenant{ID: "t-1", Name: "Acme"})
	c.Wait()

	got, ok := c.Get("t-1")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got.Name != "Acme" {
		t.Errorf("name = %q, want Acme", got.Name)
	}

	c.Delete("t-1")
	if _, ok := c.Get("t-1"); ok {
		t.Error("expected miss after Delete")
	}
}

func TestCache_Miss(t *testing.T) {
	c := newCache(t, time.Minute)
	if _, ok := c.Get("nope"); ok {
		t.Error("expected miss")
	}
}

func TestCache_ReturnsCopy(t *testing.T) {
	c := newCache(t, time.Minute)
	c.Set(&tenant.Tenant{ID: "t-copy", Name: "Original"})
	c.Wait()

	got, _ := c.Get("t-copy")
	got.Name = "Mutated"

	again, ok := c.Get("t-copy")
	if !ok || again.Name != "Original" {
		t.Fatalf("cache entry mutated through returned value: %+v", again)
	}
}

func TestCache_NilIgnored(t *testing.T) {
	c := newCache(t, time.Minute)
	c.Set(nil)
	c.Wait()
}

func TestCache_Expires(t *testing.T) {
	c := newCache(t, 50*time.Millisecond)
	c.Set(&tenant.Tenant{ID: "t-ttl", Name: "Short"})
	c.Wait()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := c.Get("t-ttl"); !ok {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("entry did not expire")
}
