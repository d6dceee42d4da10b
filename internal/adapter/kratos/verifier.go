// Package kratos implements the identity verifier port against Ory Kratos.
package kratos

import (
	"context"
	"fmt"
	"net/http"
	"time"

	kratos "github.com/ory/kratos-client-go"

	"github.com/Strob0t/tenantgate/internal/config"
	"github.com/Strob0t/tenantgate/internal/domain"
	"github.com/Strob0t/tenantgate/internal/domain/identity"
)

// Verifier implements identity.Verifier using the Kratos frontend whoami API.
type Verifier struct {
	client     *kratos.APIClient
	cookieName string
	timeout    time.Duration
	now        func() time.Time
}

// NewVerifier creates a Kratos verifier with a tuned HTTP transport.
// cookieName is the session cookie name Kratos expects on whoami.
func NewVerifier(cfg config.Identity, cookieName string) *Verifier {
	configuration := kratos.NewConfiguration()
	configuration.Servers = []kratos.ServerConfiguration{
		{URL: cfg.KratosURL},
	}
	configuration.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Verifier{
		client:     kratos.NewAPIClient(configuration),
		cookieName: cookieName,
		timeout:    cfg.Timeout,
		now:        time.Now,
	}
}

// Verify validates the raw session credential and returns the session.
func (v *Verifier) Verify(ctx context.Context, token string) (*identity.Session, error) {
	if token == "" {
		return nil, domain.ErrNoSession
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	cookie := (&http.Cookie{Name: v.cookieName, Value: token}).String()
	session, resp, err := v.client.FrontendAPI.ToSession(ctx).Cookie(cookie).Execute()
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, classify(resp, err)
	}

	if session.Active != nil && !*session.Active {
		return nil, domain.ErrSessionExpired
	}
	if session.ExpiresAt != nil && !session.ExpiresAt.After(v.now()) {
		return nil, domain.ErrSessionExpired
	}
	if session.Identity == nil || session.Identity.Id == "" {
		return nil, fmt.Errorf("%w: missing identity in session", domain.ErrInvalidSession)
	}

	out := &identity.Session{
		ID: session.Id,
		Identity: identity.Identity{
			ID:    session.Identity.Id,
			Email: emailTrait(session.Identity.Traits),
		},
	}
	if session.ExpiresAt != nil {
		out.ExpiresAt = *session.ExpiresAt
	}
	return out, nil
}

func classify(resp *http.Response, err error) error {
	if resp != nil {
		switch {
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return domain.ErrInvalidSession
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: kratos returned status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
		default:
			return fmt.Errorf("%w: kratos returned status %d", domain.ErrInvalidSession, resp.StatusCode)
		}
	}
	// Transport failure, timeout or cancellation.
	return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
}

// emailTrait extracts the "email" trait from the identity traits document.
func emailTrait(traits any) string {
	m, ok := traits.(map[string]any)
	if !ok {
		return ""
	}
	email, _ := m["email"].(string)
	return email
}
