// Package service holds the request-time resolution steps of the gateway:
// session authentication, profile, membership and tenant resolution, and the
// pending-work counter.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tgotel "github.com/Strob0t/tenantgate/internal/adapter/otel"
	"github.com/Strob0t/tenantgate/internal/config"
	"github.com/Strob0t/tenantgate/internal/domain"
	"github.com/Strob0t/tenantgate/internal/domain/identity"
	idport "github.com/Strob0t/tenantgate/internal/port/identity"
	"github.com/Strob0t/tenantgate/internal/resilience"
)

// AuthStatus is the outcome of session authentication.
type AuthStatus int

const (
	Unauthenticated AuthStatus = iota
	Authenticated
)

func (s AuthStatus) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// AuthReason explains an unauthenticated outcome. It is recorded for logs
// and metrics only; every reason leads to the same login redirect.
type AuthReason string

const (
	ReasonNone                AuthReason = ""
	ReasonNoSession           AuthReason = "no_session"
	ReasonInvalidSession      AuthReason = "invalid_session"
	ReasonExpired             AuthReason = "expired"
	ReasonUpstreamUnavailable AuthReason = "upstream_unavailable"
)

// AuthResult is the verdict for one credential.
type AuthResult struct {
	Status    AuthStatus
	Reason    AuthReason
	Identity  *identity.Identity
	ExpiresAt time.Time
}

// Authenticated reports whether the result carries a verified identity.
func (r AuthResult) Authenticated() bool {
	return r.Status == Authenticated && r.Identity != nil
}

// AuthService verifies session credentials against the identity provider.
type AuthService struct {
	verifier idport.Verifier
	breaker  *resilience.Breaker
	timeout  time.Duration
	metrics  *tgotel.Metrics
	log      *slog.Logger
}

// NewAuthService creates an AuthService. breaker and metrics may be nil.
func NewAuthService(verifier idport.Verifier, breaker *resilience.Breaker, timeout time.Duration, metrics *tgotel.Metrics, log *slog.Logger) *AuthService {
	return &AuthService{
		verifier: verifier,
		breaker:  breaker,
		timeout:  timeout,
		metrics:  metrics,
		log:      log,
	}
}

// NewVerifierBreaker builds the circuit breaker guarding identity provider
// calls. Rejected credentials are healthy responses and do not trip it.
func NewVerifierBreaker(cfg config.Breaker, log *slog.Logger) *resilience.Breaker {
	return resilience.NewBreaker("identity", cfg.MaxFailures, cfg.Timeout,
		resilience.WithFailurePredicate(func(err error) bool {
			return !domain.IsSessionError(err)
		}),
		resilience.WithStateListener(func(name string, from, to resilience.State) {
			log.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		}),
	)
}

// Authenticate makes at most one verification call and never returns an
// error: every failure becomes Unauthenticated with a reason.
func (s *AuthService) Authenticate(ctx context.Context, token string) AuthResult {
	if token == "" {
		return AuthResult{Status: Unauthenticated, Reason: ReasonNoSession}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx, span := tgotel.StartVerifySpan(ctx)

	start := time.Now()
	var sess *identity.Session
	call := func() error {
		var err error
		sess, err = s.verifier.Verify(ctx, token)
		return err
	}
	var err error
	if s.breaker != nil {
		err = s.breaker.Execute(call)
	} else {
		err = call()
	}
	if err == nil && (sess == nil || sess.Identity.ID == "") {
		err = domain.ErrInvalidSession
	}
	tgotel.EndSpan(span, err)

	if err != nil {
		reason := classify(err)
		s.metrics.RecordVerify(ctx, time.Since(start), string(reason))
		level := slog.LevelDebug
		if reason == ReasonUpstreamUnavailable {
			level = slog.LevelWarn
		}
		s.log.Log(ctx, level, "session not authenticated", "reason", string(reason), "error", err)
		return AuthResult{Status: Unauthenticated, Reason: reason}
	}

	s.metrics.RecordVerify(ctx, time.Since(start), "authenticated")
	id := sess.Identity
	return AuthResult{
		Status:    Authenticated,
		Identity:  &id,
		ExpiresAt: sess.ExpiresAt,
	}
}

func classify(err error) AuthReason {
	switch {
	case errors.Is(err, domain.ErrNoSession):
		return ReasonNoSession
	case errors.Is(err, domain.ErrSessionExpired):
		return ReasonExpired
	case errors.Is(err, domain.ErrInvalidSession):
		return ReasonInvalidSession
	default:
		// Breaker open, timeouts, transport and provider failures.
		return ReasonUpstreamUnavailable
	}
}
