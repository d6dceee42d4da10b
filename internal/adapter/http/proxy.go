package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/Strob0t/tenantgate/internal/logger"
)

// NewUpstreamProxy returns a reverse proxy to the dashboard upstream. The
// tenant headers set by the gatekeeper travel with the proxied request.
func NewUpstreamProxy(rawURL string, log *slog.Logger) (http.Handler, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.New("upstream url must be absolute")
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = pr.In.Host
			if id := logger.RequestID(pr.In.Context()); id != "" {
				pr.Out.Header.Set("X-Request-ID", id)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.For(r.Context(), log).Error("upstream request failed", "upstream", target.Host, "error", err)
			writeError(w, http.StatusBadGateway, "upstream unavailable")
		},
	}, nil
}
