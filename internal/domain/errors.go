// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Session errors. NoSession, InvalidSession and SessionExpired all end in the
// same login redirect; they are kept apart for logs and metrics only.
var (
	ErrNoSession      = errors.New("no session credential")
	ErrInvalidSession = errors.New("session rejected")
	ErrSessionExpired = errors.New("session expired")
)

// Tenancy errors, surfaced to the caller as distinct pages.
var (
	ErrNoMembership     = errors.New("no active tenant membership")
	ErrInsufficientTier = errors.New("role tier below required minimum")
)

// ErrUpstreamUnavailable indicates the identity provider or a backing store
// could not be reached.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// IsSessionError reports whether err is one of the session failures that
// collapse into the unauthenticated outcome.
func IsSessionError(err error) bool {
	return errors.Is(err, ErrNoSession) ||
		errors.Is(err, ErrInvalidSession) ||
		errors.Is(err, ErrSessionExpired)
}
