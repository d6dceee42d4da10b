// Package identity defines the verified caller identity and its display profile.
package identity

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fallbackName is used when neither a profile nor an email is available.
const fallbackName = "User"

// Identity is produced only by a successful session verification and is
// immutable for the lifetime of a request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is what the identity provider reports for a verified credential.
type Session struct {
	ID        string
	Identity  Identity
	ExpiresAt time.Time
}

// Profile is the display profile owned by the identity provider's user store.
type Profile struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Initials  string `json:"initials"`
	// Synthesized is true when no profile row backed this value.
	Synthesized bool `json:"synthesized,omitempty"`
}

// DisplayName returns the full name, or a name derived from the email.
func (p *Profile) DisplayName() string {
	if strings.TrimSpace(p.FullName) != "" {
		return p.FullName
	}
	return NameFromEmail(p.Email)
}

// Fallback synthesizes a renderable profile for an identity whose profile
// record could not be read.
func Fallback(id Identity) Profile {
	name := NameFromEmail(id.Email)
	return Profile{
		ID:          id.ID,
		FullName:    name,
		Email:       id.Email,
		Initials:    Initials(name),
		Synthesized: true,
	}
}

// NameFromEmail derives a display name from the local part of an email.
// "jane.doe@example.com" becomes "Jane Doe".
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return fallbackName
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

// Initials takes the first rune of each whitespace-separated token,
// upper-cases the result and keeps at most two runes.
func Initials(name string) string {
	var b []rune
	for _, tok := range strings.Fields(name) {
		for _, r := range tok {
			b = append(b, unicode.ToUpper(r))
			break
		}
		if len(b) == 2 {
			break
		}
	}
	return string(b)
}
