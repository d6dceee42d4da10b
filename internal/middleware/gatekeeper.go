package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	tgotel "github.com/Strob0t/tenantgate/internal/adapter/otel"
	"github.com/Strob0t/tenantgate/internal/config"
	"github.com/Strob0t/tenantgate/internal/domain"
	"github.com/Strob0t/tenantgate/internal/domain/access"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
	"github.com/Strob0t/tenantgate/internal/logger"
	"github.com/Strob0t/tenantgate/internal/service"
	"github.com/Strob0t/tenantgate/internal/session"
)

// Headers carrying the resolved tenancy to downstream handlers. Inbound
// values are always discarded.
const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderRoleTier = "X-User-Role-Tier"
)

// Decision outcomes, used as log and metric labels.
const (
	OutcomeAllow              = "allow"
	OutcomeRedirectCanonical  = "redirect_canonical"
	OutcomeRedirectLogin      = "redirect_login"
	OutcomeRedirectOnboarding = "redirect_onboarding"
	OutcomeRedirectForbidden  = "redirect_forbidden"
	OutcomeUnavailable        = "unavailable"
)

// Authenticator verifies a raw session credential.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) service.AuthResult
}

// MembershipResolver picks the membership a request acts under.
type MembershipResolver interface {
	Resolve(ctx context.Context, profileID, preferredTenantID string) (*tenant.Membership, error)
}

// TenantLoader loads tenant metadata.
type TenantLoader interface {
	Load(ctx context.Context, id string) (*tenant.Tenant, error)
}

type tierRule struct {
	prefix string
	tier   tenant.RoleTier
}

// Gatekeeper decides, for every request, whether it may reach the
// downstream handler and with which tenant context.
type Gatekeeper struct {
	codec   *session.Codec
	auth    Authenticator
	members MembershipResolver
	tenants TenantLoader
	metrics *tgotel.Metrics
	log     *slog.Logger

	publicPaths    map[string]bool
	publicPrefixes []string
	authOnly       map[string]bool
	minTier        tenant.RoleTier
	rules          []tierRule // longest prefix first
	enforce        bool
	refresh        bool
	portalURL      *url.URL
	onboardingURL  string
	forbiddenPath  string
	baseURL        string

	unavailable http.Handler
}

// GatekeeperOption configures a Gatekeeper.
type GatekeeperOption func(*Gatekeeper)

// WithUnavailableHandler sets the handler rendering the 503 page.
func WithUnavailableHandler(h http.Handler) GatekeeperOption {
	return func(g *Gatekeeper) { g.unavailable = h }
}

// WithMetrics records every decision on m.
func WithMetrics(m *tgotel.Metrics) GatekeeperOption {
	return func(g *Gatekeeper) { g.metrics = m }
}

// NewGatekeeper builds a Gatekeeper from the gate, server and session config.
func NewGatekeeper(cfg *config.Config, codec *session.Codec, auth Authenticator, members MembershipResolver, tenants TenantLoader, log *slog.Logger, opts ...GatekeeperOption) (*Gatekeeper, error) {
	portal, err := url.Parse(cfg.Gate.PortalURL)
	if err != nil {
		return nil, err
	}

	g := &Gatekeeper{
		codec:          codec,
		auth:           auth,
		members:        members,
		tenants:        tenants,
		log:            log,
		publicPaths:    make(map[string]bool, len(cfg.Gate.PublicPaths)),
		publicPrefixes: cfg.Gate.PublicPrefixes,
		authOnly:       make(map[string]bool, len(cfg.Gate.AuthOnlyPaths)),
		minTier:        tenant.RoleTier(cfg.Gate.MinTier),
		enforce:        cfg.Gate.EnforceTenancy,
		refresh:        cfg.Session.Refresh,
		portalURL:      portal,
		onboardingURL:  cfg.Gate.OnboardingURL,
		forbiddenPath:  cfg.Gate.ForbiddenPath,
		baseURL:        strings.TrimRight(cfg.Server.PublicBaseURL, "/"),
		unavailable:    http.HandlerFunc(defaultUnavailable),
	}
	for _, p := range cfg.Gate.PublicPaths {
		g.publicPaths[p] = true
	}
	// Under-tier callers are sent here; gating it would loop.
	if g.forbiddenPath != "" {
		g.publicPaths[g.forbiddenPath] = true
	}
	for _, p := range cfg.Gate.AuthOnlyPaths {
		g.authOnly[p] = true
	}
	for _, r := range cfg.Gate.TierRules {
		g.rules = append(g.rules, tierRule{prefix: strings.TrimRight(r.Prefix, "/"), tier: tenant.RoleTier(r.Tier)})
	}
	sort.SliceStable(g.rules, func(i, j int) bool {
		return len(g.rules[i].prefix) > len(g.rules[j].prefix)
	})
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Handler returns the gate middleware.
func (g *Gatekeeper) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(HeaderTenantID)
		r.Header.Del(HeaderRoleTier)

		ctx := r.Context()
		reqPath := r.URL.Path
		log := logger.For(ctx, g.log).With("path", reqPath)

		// Rules only ever see the canonical path, so dot segments cannot
		// reach a protected path through a public or lower-tier prefix.
		if clean := CleanPath(reqPath); clean != reqPath {
			g.record(ctx, OutcomeRedirectCanonical, "non_canonical_path")
			u := *r.URL
			u.Path, u.RawPath = clean, ""
			http.Redirect(w, r, u.RequestURI(), http.StatusPermanentRedirect)
			return
		}

		if g.IsPublic(reqPath) {
			g.record(ctx, OutcomeAllow, "public")
			next.ServeHTTP(w, r)
			return
		}

		token, _ := g.codec.Read(r)
		res := g.auth.Authenticate(ctx, token)
		if !res.Authenticated() {
			if token != "" && res.Reason != service.ReasonUpstreamUnavailable {
				g.codec.Clear(w)
			}
			g.record(ctx, OutcomeRedirectLogin, string(res.Reason))
			log.Info("gate: login required", "reason", string(res.Reason))
			http.Redirect(w, r, g.LoginURL(r), http.StatusTemporaryRedirect)
			return
		}

		rc := &access.RequestContext{Identity: res.Identity}
		log = log.With("identity_id", res.Identity.ID)

		enforce := g.enforce && !g.authOnly[reqPath]

		m, t, err := g.resolveTenancy(ctx, res.Identity.ID, g.codec.PreferredTenant(r))
		switch {
		case err == nil:
			rc.Membership = m
			rc.Tenant = t
		case errors.Is(err, domain.ErrUpstreamUnavailable):
			if enforce {
				g.record(ctx, OutcomeUnavailable, "membership_store")
				log.Error("gate: membership store unavailable", "error", err)
				g.unavailable.ServeHTTP(w, r)
				return
			}
			log.Warn("gate: tenancy unresolved, continuing unenforced", "error", err)
		default:
			if enforce {
				g.record(ctx, OutcomeRedirectOnboarding, "no_membership")
				log.Info("gate: no active membership", "error", err)
				http.Redirect(w, r, g.onboardingURL, http.StatusTemporaryRedirect)
				return
			}
		}

		if rc.Membership != nil {
			required := g.RequiredTier(reqPath)
			if !rc.Membership.RoleTier.AtLeast(required) && enforce {
				err := fmt.Errorf("%w: have %s, need %s", domain.ErrInsufficientTier, rc.RoleTier(), required)
				g.record(ctx, OutcomeRedirectForbidden, "insufficient_tier")
				log.Info("gate: forbidden", "tenant_id", rc.TenantID(), "error", err)
				http.Redirect(w, r, g.forbiddenPath, http.StatusTemporaryRedirect)
				return
			}
			r.Header.Set(HeaderTenantID, rc.TenantID())
			r.Header.Set(HeaderRoleTier, string(rc.RoleTier()))
		}

		if g.refresh && !res.ExpiresAt.IsZero() {
			g.codec.Write(w, token, res.ExpiresAt)
		}

		g.record(ctx, OutcomeAllow, "authorized")
		log.Debug("gate: allowed", "tenant_id", rc.TenantID(), "tier", string(rc.RoleTier()))
		next.ServeHTTP(w, r.WithContext(access.WithRequestContext(ctx, rc)))
	})
}

// resolveTenancy returns the active membership and its tenant. A dangling
// tenant reference is reported as domain.ErrNoMembership.
func (g *Gatekeeper) resolveTenancy(ctx context.Context, profileID, preferred string) (*tenant.Membership, *tenant.Tenant, error) {
	m, err := g.members.Resolve(ctx, profileID, preferred)
	if err != nil {
		return nil, nil, err
	}
	t, err := g.tenants.Load(ctx, m.TenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, errors.Join(domain.ErrNoMembership, err)
		}
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			err = errors.Join(domain.ErrUpstreamUnavailable, err)
		}
		return nil, nil, err
	}
	return m, t, nil
}

// CleanPath returns the canonical form of p: rooted, without dot segments
// or repeated slashes, keeping a trailing slash.
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np
}

// IsPublic reports whether path bypasses authentication: an exact,
// case-sensitive match or a configured prefix.
func (g *Gatekeeper) IsPublic(path string) bool {
	if g.publicPaths[path] {
		return true
	}
	for _, p := range g.publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// RequiredTier returns the minimum tier for path: the tier of the longest
// matching rule, or the global minimum.
func (g *Gatekeeper) RequiredTier(path string) tenant.RoleTier {
	for _, rule := range g.rules {
		if path == rule.prefix || strings.HasPrefix(path, rule.prefix+"/") || rule.prefix == "" {
			return rule.tier
		}
	}
	return g.minTier
}

// LoginURL builds the portal redirect carrying the absolute URL of r.
func (g *Gatekeeper) LoginURL(r *http.Request) string {
	u := *g.portalURL
	q := u.Query()
	q.Set("redirect", g.originalURL(r))
	u.RawQuery = q.Encode()
	return u.String()
}

func (g *Gatekeeper) originalURL(r *http.Request) string {
	if g.baseURL != "" {
		return g.baseURL + r.URL.RequestURI()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "https" || p == "http" {
		scheme = p
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func (g *Gatekeeper) record(ctx context.Context, outcome, reason string) {
	g.metrics.RecordDecision(ctx, outcome, reason)
}

func defaultUnavailable(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "5")
	http.Error(w, "service temporarily unavailable", http.StatusServiceUnavailable)
}
