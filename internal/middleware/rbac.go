package middleware

import (
	"net/http"

	"github.com/Strob0t/tenantgate/internal/domain"
	"github.com/Strob0t/tenantgate/internal/domain/access"
	"github.com/Strob0t/tenantgate/internal/domain/tenant"
)

// RequireIdentity returns 401 for JSON endpoints reached without a verified
// identity in the request context.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := access.FromContext(r.Context())
		if rc == nil || rc.Identity == nil {
			http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTier restricts a route to members holding at least min.
func RequireTier(min tenant.RoleTier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := access.FromContext(r.Context())
			if rc == nil || rc.Identity == nil {
				http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
				return
			}
			if rc.Membership == nil {
				http.Error(w, `{"error":"`+domain.ErrNoMembership.Error()+`"}`, http.StatusForbidden)
				return
			}
			if !rc.RoleTier().AtLeast(min) {
				http.Error(w, `{"error":"`+domain.ErrInsufficientTier.Error()+`"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
