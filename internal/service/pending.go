package service

import (
	"context"
	"log/slog"

	"github.com/Strob0t/tenantgate/internal/port/database"
)

// PendingService counts tenant work awaiting action. It fails open to 0.
type PendingService struct {
	store database.BookingStore
	log   *slog.Logger
}

// NewPendingService creates a new PendingService.
func NewPendingService(store database.BookingStore, log *slog.Logger) *PendingService {
	return &PendingService{store: store, log: log}
}

// Count returns the number of pending bookings of tenantID, or 0 when the
// tenant is unknown or the store fails.
func (s *PendingService) Count(ctx context.Context, tenantID string) int {
	if tenantID == "" {
		return 0
	}
	n, err := s.store.CountPendingBookings(ctx, tenantID)
	if err != nil {
		s.log.WarnContext(ctx, "pending count failed, reporting 0", "tenant_id", tenantID, "error", err)
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}
