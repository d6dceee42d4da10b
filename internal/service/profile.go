package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Strob0t/tenantgate/internal/domain"
	"github.com/Strob0t/tenantgate/internal/domain/identity"
	"github.com/Strob0t/tenantgate/internal/port/database"
)

// ProfileService resolves display profiles. It fails open.
type ProfileService struct {
	store database.ProfileStore
	log   *slog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(store database.ProfileStore, log *slog.Logger) *ProfileService {
	return &ProfileService{store: store, log: log}
}

// Resolve returns the stored profile of id, or a synthesized one when the
// row is missing or the store fails.
func (s *ProfileService) Resolve(ctx context.Context, id identity.Identity) identity.Profile {
	p, err := s.store.GetProfile(ctx, id.ID)
	if err != nil || p == nil {
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "profile lookup failed, using fallback", "identity_id", id.ID, "error", err)
		}
		return identity.Fallback(id)
	}

	out := *p
	if out.Email == "" {
		out.Email = id.Email
	}
	out.FullName = out.DisplayName()
	out.Initials = identity.Initials(out.FullName)
	return out
}
