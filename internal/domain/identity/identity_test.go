package identity

import (
	"testing"
	"unicode"
)

func TestNameFromEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"jane.doe@example.com", "Jane Doe"},
		{"john_smith@example.com", "John Smith"},
		{"ops-team+alerts@example.com", "Ops Team Alerts"},
		{"admin@example.com", "Admin"},
		{"", "User"},
		{"@example.com", "User"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := NameFromEmail(tt.email); got != tt.want {
				t.Errorf("NameFromEmail(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Jane Doe", "JD"},
		{"jane doe", "JD"},
		{"Mary Ann Smith", "MA"},
		{"Admin", "A"},
		{"  spaced   out  ", "SO"},
		{"émile zola", "ÉZ"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Initials(tt.name); got != tt.want {
				t.Errorf("Initials(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestFallback_JaneDoe(t *testing.T) {
	p := Fallback(Identity{ID: "u-1", Email: "jane.doe@example.com"})

	if p.FullName == "" {
		t.Fatal("expected non-empty display name")
	}
	if !p.Synthesized {
		t.Error("expected synthesized profile")
	}
	if len([]rune(p.Initials)) != 2 {
		t.Fatalf("initials = %q, want exactly 2 characters", p.Initials)
	}
	for _, r := range p.Initials {
		if !unicode.IsUpper(r) {
			t.Errorf("initials = %q, want upper case", p.Initials)
		}
	}
}

func TestProfileDisplayName(t *testing.T) {
	p := Profile{FullName: "Grace Hopper", Email: "g@example.com"}
	if got := p.DisplayName(); got != "Grace Hopper" {
		t.Errorf("DisplayName = %q", got)
	}

	p = Profile{Email: "grace.hopper@example.com"}
	if got := p.DisplayName(); got != "Grace Hopper" {
		t.Errorf("DisplayName = %q, want derived from email", got)
	}
}
