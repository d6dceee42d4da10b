package postgres

import (
	"context"
	"fmt"
)

// CountPendingBookings counts the tenant's bookings awaiting action.
func (s *Store) CountPendingBookings(ctx context.Context, tenantID string) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM bookings WHERE tenant_id = $1 AND status = 'pending'`, tenantID,
	).Scan(&n)
	if err != nil {
		return 0, unavailableWrap(err, fmt.Sprintf("count pending bookings for %s", tenantID))
	}
	return n, nil
}
