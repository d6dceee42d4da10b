package http

import (
	"net/http"

	"github.com/Strob0t/tenantgate/internal/domain"
	"github.com/Strob0t/tenantgate/internal/domain/access"
)

// Logout clears the session cookie and sends the browser to the portal.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Codec.Clear(w)
	http.Redirect(w, r, h.PortalURL, http.StatusSeeOther)
}

// SelectTenant records the tenant the caller wants to act as. The
// selection is only stored when the caller holds an active membership there.
func (h *Handlers) SelectTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	rc := access.FromContext(r.Context())
	if rc == nil || rc.Identity == nil {
		writeDomainError(w, domain.ErrNoSession, "")
		return
	}

	ok, err := h.Memberships.HasActive(r.Context(), rc.Identity.ID, tenantID)
	if err != nil {
		h.Log.ErrorContext(r.Context(), "tenant select: membership lookup failed", "error", err)
		writeDomainError(w, err, "")
		return
	}
	if !ok {
		writeDomainError(w, domain.ErrNoMembership, "")
		return
	}

	h.Codec.WritePreferredTenant(w, tenantID)
	w.WriteHeader(http.StatusNoContent)
}
