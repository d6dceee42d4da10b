package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Strob0t/tenantgate/internal/config"
	"github.com/Strob0t/tenantgate/internal/domain"
	"github.com/Strob0t/tenantgate/internal/domain/identity"
	"github.com/Strob0t/tenantgate/internal/resilience"
)

func validSession() *identity.Session {
	return &identity.Session{
		ID:        "s-1",
		Identity:  identity.Identity{ID: "u-1", Email: "jane.doe@example.com"},
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
}

func TestAuthService_Authenticated(t *testing.T) {
	sess := validSession()
	v := &fakeVerifier{sess: sess}
	svc := NewAuthService(v, nil, time.Second, nil, discardLogger())

	res := svc.Authenticate(context.Background(), "tok")
	if !res.Authenticated() {
		t.Fatalf("expected authenticated, got %+v", res)
	}
	if res.Identity.ID != "u-1" || res.Identity.Email != "jane.doe@example.com" {
		t.Errorf("identity = %+v", res.Identity)
	}
	if !res.ExpiresAt.Equal(sess.ExpiresAt) {
		t.Errorf("expires = %v, want %v", res.ExpiresAt, sess.ExpiresAt)
	}
	if res.Reason != ReasonNone {
		t.Errorf("reason = %q, want empty", res.Reason)
	}
}

func TestAuthService_EmptyTokenSkipsProvider(t *testing.T) {
	v := &fakeVerifier{sess: validSession()}
	svc := NewAuthService(v, nil, time.Second, nil, discardLogger())

	res := svc.Authenticate(context.Background(), "")
	if res.Status != Unauthenticated || res.Reason != ReasonNoSession {
		t.Fatalf("got %+v", res)
	}
	if v.Calls() != 0 {
		t.Errorf("expected no provider call, got %d", v.Calls())
	}
}

func TestAuthService_Reasons(t *testing.T) {
	tests := []struct {
		name string
		err  error
		sess *identity.Session
		want AuthReason
	}{
		{"rejected", fmt.Errorf("whoami: %w", domain.ErrInvalidSession), nil, ReasonInvalidSession},
		{"expired", domain.ErrSessionExpired, nil, ReasonExpired},
		{"no session", domain.ErrNoSession, nil, ReasonNoSession},
		{"provider down", fmt.Errorf("whoami: %w", domain.ErrUpstreamUnavailable), nil, ReasonUpstreamUnavailable},
		{"unknown error", errors.New("boom"), nil, ReasonUpstreamUnavailable},
		{"nil session", nil, nil, ReasonInvalidSession},
		{"missing identity", nil, &identity.Session{ID: "s"}, ReasonInvalidSession},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &fakeVerifier{sess: tt.sess, err: tt.err}
			svc := NewAuthService(v, nil, time.Second, nil, discardLogger())
			res := svc.Authenticate(context.Background(), "tok")
			if res.Status != Unauthenticated {
				t.Fatalf("expected unauthenticated, got %+v", res)
			}
			if res.Reason != tt.want {
				t.Errorf("reason = %q, want %q", res.Reason, tt.want)
			}
			if res.Identity != nil {
				t.Error("identity must be nil when unauthenticated")
			}
			if v.Calls() != 1 {
				t.Errorf("calls = %d, want exactly 1", v.Calls())
			}
		})
	}
}

func TestAuthService_Timeout(t *testing.T) {
	v := &fakeVerifier{block: true}
	svc := NewAuthService(v, nil, 20*time.Millisecond, nil, discardLogger())

	start := time.Now()
	res := svc.Authenticate(context.Background(), "tok")
	if res.Status != Unauthenticated || res.Reason != ReasonUpstreamUnavailable {
		t.Fatalf("got %+v", res)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
}

func TestAuthService_BreakerOpensOnOutageOnly(t *testing.T) {
	breaker := NewVerifierBreaker(config.Breaker{MaxFailures: 2, Timeout: time.Minute}, discardLogger())

	rejected := &fakeVerifier{err: domain.ErrInvalidSession}
	svc := NewAuthService(rejected, breaker, time.Second, nil, discardLogger())
	for range 5 {
		svc.Authenticate(context.Background(), "bad")
	}
	if breaker.State() != resilience.StateClosed {
		t.Fatalf("rejected credentials must not trip the breaker, state = %s", breaker.State())
	}

	down := &fakeVerifier{err: domain.ErrUpstreamUnavailable}
	svc = NewAuthService(down, breaker, time.Second, nil, discardLogger())
	svc.Authenticate(context.Background(), "tok")
	svc.Authenticate(context.Background(), "tok")
	if breaker.State() != resilience.StateOpen {
		t.Fatalf("expected open breaker, state = %s", breaker.State())
	}

	res := svc.Authenticate(context.Background(), "tok")
	if res.Reason != ReasonUpstreamUnavailable {
		t.Errorf("reason = %q, want upstream_unavailable", res.Reason)
	}
	if down.Calls() != 2 {
		t.Errorf("open breaker must short-circuit, calls = %d", down.Calls())
	}
}

func TestAuthStatusString(t *testing.T) {
	if Authenticated.String() != "authenticated" || Unauthenticated.String() != "unauthenticated" {
		t.Error("unexpected status strings")
	}
}
