// Package identity defines the port to the external identity provider.
package identity

import (
	"context"

	domainid "github.com/Strob0t/tenantgate/internal/domain/identity"
)

// Verifier exchanges a raw session credential for a verified session.
// Implementations classify failures with the domain session errors
// (ErrInvalidSession, ErrSessionExpired) or ErrUpstreamUnavailable.
type Verifier interface {
	Verify(ctx context.Context, token string) (*domainid.Session, error)
}
