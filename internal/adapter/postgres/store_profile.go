package postgres

import (
	"context"

	"github.com/Strob0t/tenantgate/internal/domain/identity"
)

// GetProfile loads the display profile of an identity.
func (s *Store) GetProfile(ctx context.Context, id string) (*identity.Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var p identity.Profile
	var name, email, avatar *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, full_name, email, avatar_url FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &name, &email, &avatar)
	if err != nil {
		return nil, notFoundWrap(err, "get profile %s", id)
	}
	p.FullName = deref(name)
	p.Email = deref(email)
	p.AvatarURL = deref(avatar)
	return &p, nil
}
