package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Strob0t/tenantgate/internal/domain"
)

// pgInvalidTextRepresentation is raised when a malformed UUID is compared
// against a uuid column.
const pgInvalidTextRepresentation = "22P02"

// scannable abstracts pgx.Row and pgx.Rows for shared scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

// deref returns the pointed-to string, or "" for a NULL column.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// notFoundWrap maps "no rows" and malformed-id errors to domain.ErrNotFound,
// and every other failure to domain.ErrUpstreamUnavailable.
func notFoundWrap(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	}
	if isInvalidID(err) {
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	}
	return unavailableWrap(err, msg)
}

// isInvalidID reports whether err is a uuid parse failure raised by the server.
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}

// unavailableWrap marks err as a store outage while keeping the cause.
func unavailableWrap(err error, msg string) error {
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrUpstreamUnavailable, err)
}

// withTimeout bounds a single read.
func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}
