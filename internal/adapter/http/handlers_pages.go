package http

import (
	"context"
	"html/template"
	"net/http"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<main>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
<p><a href="/">Back to dashboard</a></p>
</main>
</body>
</html>
`))

type page struct {
	Title   string
	Message string
}

func renderPage(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = pageTmpl.Execute(w, p)
}

// Forbidden renders the page shown when the caller's role tier is too low.
func (h *Handlers) Forbidden(w http.ResponseWriter, _ *http.Request) {
	renderPage(w, http.StatusForbidden, page{
		Title:   "Access denied",
		Message: "Your role in this organization does not allow access to that page.",
	})
}

// Unavailable renders the page shown when tenancy cannot be resolved.
func (h *Handlers) Unavailable(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "5")
	renderPage(w, http.StatusServiceUnavailable, page{
		Title:   "Temporarily unavailable",
		Message: "We could not load your organization right now. Please try again in a moment.",
	})
}

type healthResponse struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres"`
	NATS     string `json:"nats,omitempty"`
}

// Health reports whether the membership store is reachable.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Postgres: "ok"}
	status := http.StatusOK

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := h.DB.Ping(ctx); err != nil {
			h.Log.WarnContext(r.Context(), "health: postgres ping failed", "error", err)
			resp.Status = "degraded"
			resp.Postgres = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	if h.Bus != nil {
		resp.NATS = "ok"
		if !h.Bus.IsConnected() {
			// Cache invalidation lags without the bus; requests are still served.
			resp.NATS = "disconnected"
		}
	}

	writeJSON(w, status, resp)
}
