package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/tenantgate/internal/domain"
	"github.com/Strob0t/tenantgate/internal/domain/access"
	"github.com/Strob0t/tenantgate/internal/port/messagequeue"
)

type invalidateResponse struct {
	TenantID  string `json:"tenant_id"`
	Broadcast bool   `json:"broadcast"`
}

// InvalidateTenant evicts a tenant from this replica's cache and, when the
// bus is configured, publishes a tenant update so every replica evicts it.
func (h *Handlers) InvalidateTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant id is required")
		return
	}

	if h.Tenants != nil {
		h.Tenants.Invalidate(tenantID)
	}

	if h.Publisher != nil {
		data, err := messagequeue.EncodeTenantUpdated(messagequeue.TenantUpdatedPayload{TenantID: tenantID})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.Publisher.Publish(r.Context(), h.TenantTopic, data); err != nil {
			h.Log.ErrorContext(r.Context(), "tenant invalidate: publish failed", "tenant_id", tenantID, "error", err)
			writeDomainError(w, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err), "")
			return
		}
	}

	var by string
	if rc := access.FromContext(r.Context()); rc != nil && rc.Identity != nil {
		by = rc.Identity.ID
	}
	h.Log.InfoContext(r.Context(), "tenant invalidated", "tenant_id", tenantID, "by", by, "broadcast", h.Publisher != nil)
	writeJSON(w, http.StatusAccepted, invalidateResponse{TenantID: tenantID, Broadcast: h.Publisher != nil})
}
