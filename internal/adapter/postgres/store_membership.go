package postgres

import (
	"context"
	"fmt"

	"github.com/Strob0t/tenantgate/internal/domain/tenant"
)

// ListActiveMemberships returns every active membership of the profile,
// most recently joined first.
func (s *Store) ListActiveMemberships(ctx context.Context, profileID string) ([]tenant.Membership, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, profile_id, tenant_id, role_tier, status, joined_at
		 FROM tenant_memberships
		 WHERE profile_id = $1 AND status = 'active'
		 ORDER BY joined_at DESC, id ASC`, profileID)
	if err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, unavailableWrap(err, fmt.Sprintf("list memberships for %s", profileID))
	}
	defer rows.Close()

	var out []tenant.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, unavailableWrap(err, "scan membership")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, unavailableWrap(err, "iterate memberships")
	}
	return out, nil
}

func scanMembership(row scannable) (tenant.Membership, error) {
	var m tenant.Membership
	var tier, status string
	err := row.Scan(&m.ID, &m.ProfileID, &m.TenantID, &tier, &status, &m.JoinedAt)
	m.RoleTier = tenant.RoleTier(tier)
	m.Status = tenant.MembershipStatus(status)
	return m, err
}
