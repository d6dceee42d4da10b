// Package session reads and writes the shared session cookie. Every write
// carries the same attribute set so that a credential minted on one
// cooperating subdomain stays valid on all of them.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Strob0t/tenantgate/internal/config"
)

// tenantCookieMaxAge bounds the preferred-tenant selection cookie.
const tenantCookieMaxAge = 365 * 24 * time.Hour

// Attributes is the fixed cookie contract shared by every cooperating service.
type Attributes struct {
	Name     string
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// Codec reads and writes the session credential.
type Codec struct {
	attrs      Attributes
	tenantName string
	log        *slog.Logger
}

// NewCodec builds a Codec from the session config. Outside local development
// the domain is required and Secure is forced on.
func NewCodec(cfg config.Session, server config.Server, log *slog.Logger) (*Codec, error) {
	if cfg.CookieName == "" {
		return nil, errors.New("session: cookie name is required")
	}
	domain := strings.TrimPrefix(strings.TrimSpace(cfg.Domain), ".")
	if domain == "" && !server.IsLocal() {
		return nil, errors.New("session: cookie domain is required outside local development")
	}
	sameSite, err := parseSameSite(cfg.SameSite)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Codec{
		attrs: Attributes{
			Name:     cfg.CookieName,
			Domain:   domain,
			Path:     "/",
			Secure:   !server.IsLocal(),
			SameSite: sameSite,
		},
		tenantName: cfg.TenantCookieName,
		log:        log,
	}, nil
}

// Attributes returns the cookie attributes applied on every write.
func (c *Codec) Attributes() Attributes {
	return c.attrs
}

// Read returns the raw credential, or false when the cookie is absent or empty.
func (c *Codec) Read(r *http.Request) (string, bool) {
	ck, err := r.Cookie(c.attrs.Name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// Write sets the session cookie. A zero expires produces a browser-session
// cookie. Writes after the response was committed are dropped.
func (c *Codec) Write(w http.ResponseWriter, token string, expires time.Time) {
	ck := c.cookie(c.attrs.Name, token)
	if !expires.IsZero() {
		ck.Expires = expires.UTC()
		ck.MaxAge = max(int(time.Until(expires).Seconds()), 1)
	}
	c.set(w, ck)
}

// Clear expires the session cookie with the same attributes it was set with.
func (c *Codec) Clear(w http.ResponseWriter) {
	ck := c.cookie(c.attrs.Name, "")
	ck.MaxAge = -1
	ck.Expires = time.Unix(0, 0)
	c.set(w, ck)
}

// PreferredTenant returns the tenant the user last selected, if any.
func (c *Codec) PreferredTenant(r *http.Request) string {
	if c.tenantName == "" {
		return ""
	}
	ck, err := r.Cookie(c.tenantName)
	if err != nil {
		return ""
	}
	return ck.Value
}

// WritePreferredTenant records the user's tenant selection.
func (c *Codec) WritePreferredTenant(w http.ResponseWriter, tenantID string) {
	if c.tenantName == "" {
		return
	}
	ck := c.cookie(c.tenantName, tenantID)
	ck.MaxAge = int(tenantCookieMaxAge.Seconds())
	c.set(w, ck)
}

func (c *Codec) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   c.attrs.Domain,
		Path:     c.attrs.Path,
		Secure:   c.attrs.Secure,
		HttpOnly: true,
		SameSite: c.attrs.SameSite,
	}
}

// committed is implemented by response writers that know whether headers
// were already sent, such as chi's middleware.WrapResponseWriter.
type committed interface {
	Status() int
}

func (c *Codec) set(w http.ResponseWriter, ck *http.Cookie) {
	if cw, ok := w.(committed); ok && cw.Status() != 0 {
		c.log.Debug("session cookie write skipped, response already committed", "cookie", ck.Name)
		return
	}
	// Replace any cookie of the same name queued earlier in this response.
	h := w.Header()
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, ck.Name+"=") {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
	http.SetCookie(w, ck)
}

func parseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(s) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("session: unknown same_site %q", s)
	}
}
