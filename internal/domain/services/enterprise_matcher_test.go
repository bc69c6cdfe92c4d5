package services

import (
	"testing"

	"github.com/devilmonastery/lock/internal/domain/entities"
)

func TestEnterpriseConnectionMatcher_Parse(t *testing.T) {
	conns := []*entities.Connection{
		newConnection(t, "ad", "MyAD", map[string]any{"domain": "auth10.com", "domain_aliases": []any{"dev.auth10.com", "AUTH10.org"}}),
		newConnection(t, "samlp", "no-domain", nil),
		newConnection(t, "waad", "Azure", map[string]any{"domain": "Azure.Example.COM"}),
		newConnection(t, "adfs", "aliases-only", map[string]any{"domain_aliases": []any{"orphan.com"}}),
	}
	m := NewEnterpriseConnectionMatcher(conns)

	tests := []struct {
		email string
		want  string
	}{
		{"john@auth10.com", "MyAD"},
		{"john@AUTH10.COM", "MyAD"},
		{"john@dev.auth10.com", "MyAD"},
		{"john@auth10.org", "MyAD"},
		{"jane@azure.example.com", "Azure"},
		{"john@other.com", ""},
		{"john@orphan.com", ""},
		{"john@", ""},
		{"auth10.com", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := ""
			if c := m.Parse(tt.email); c != nil {
				got = c.Name()
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestEnterpriseConnectionMatcher_ExtractUsername(t *testing.T) {
	m := NewEnterpriseConnectionMatcher(nil)

	tests := []struct {
		email  string
		want   string
		wantOK bool
	}{
		{"john@auth10.com", "john", true},
		{"@auth10.com", "", true},
		{"john", "", false},
	}
	for _, tt := range tests {
		got, ok := m.ExtractUsername(tt.email)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ExtractUsername(%q) = %q, %v, want %q, %v", tt.email, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEnterpriseConnectionMatcher_DomainForConnection(t *testing.T) {
	m := NewEnterpriseConnectionMatcher(nil)
	if got := m.DomainForConnection(newConnection(t, "ad", "MyAD", map[string]any{"domain": "auth10.com"})); got != "auth10.com" {
		t.Errorf("DomainForConnection() = %q", got)
	}
	if got := m.DomainForConnection(newConnection(t, "ad", "MyAD", map[string]any{"domain": 10})); got != "" {
		t.Errorf("DomainForConnection() = %q, want empty for a wrong typed domain", got)
	}
}
