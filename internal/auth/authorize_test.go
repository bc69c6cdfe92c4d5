package auth

import (
	"errors"
	"net/url"
	"testing"

	"github.com/devilmonastery/lock/internal/domain/entities"
)

func parseAuthorizeURL(t *testing.T, raw string) (*url.URL, url.Values) {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) error: %v", raw, err)
	}
	return u, u.Query()
}

func TestAuthorizeURL(t *testing.T) {
	opts, err := entities.NewOptionsBuilder().
		WithScope("openid profile").
		WithAudience("https://api.example.com").
		WithConnectionScope("google-oauth2", "email", "calendar").
		WithAuthenticationParameters(map[string]string{"prompt": "login", "ui_locales": "es"}).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	conn, err := entities.NewConnection("google-oauth2", map[string]any{"name": "google-oauth2"})
	if err != nil {
		t.Fatalf("NewConnection() error: %v", err)
	}

	a := NewAuthorizer("tenant.auth0.com", "CLIENT", "https://app.example.com/callback", opts)
	req, err := a.AuthorizeURL(conn, "xyz")
	if err != nil {
		t.Fatalf("AuthorizeURL() error: %v", err)
	}

	u, q := parseAuthorizeURL(t, req.URL)
	if u.Scheme != "https" || u.Host != "tenant.auth0.com" || u.Path != "/authorize" {
		t.Errorf("endpoint = %s://%s%s", u.Scheme, u.Host, u.Path)
	}

	want := map[string]string{
		"client_id":             "CLIENT",
		"redirect_uri":          "https://app.example.com/callback",
		"response_type":         "code",
		"state":                 "xyz",
		"scope":                 "openid profile",
		"connection":            "google-oauth2",
		"connection_scope":      "email,calendar",
		"audience":              "https://api.example.com",
		"prompt":                "login",
		"ui_locales":            "es",
		"code_challenge_method": "S256",
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("query %s = %q, want %q", k, got, v)
		}
	}
	if q.Get("code_challenge") == "" || req.CodeVerifier == "" {
		t.Error("PKCE challenge and verifier should be set by default")
	}
	if req.State != "xyz" {
		t.Errorf("State = %q, want xyz", req.State)
	}
}

func TestAuthorizeURL_WithoutPKCE(t *testing.T) {
	opts, err := entities.NewOptionsBuilder().UsePKCE(false).Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	conn, err := entities.NewConnection("samlp", map[string]any{"name": "corp-saml"})
	if err != nil {
		t.Fatalf("NewConnection() error: %v", err)
	}

	req, err := NewAuthorizer("login.example.com", "CLIENT", "", opts).AuthorizeURL(conn, "")
	if err != nil {
		t.Fatalf("AuthorizeURL() error: %v", err)
	}

	_, q := parseAuthorizeURL(t, req.URL)
	if q.Get("code_challenge") != "" || req.CodeVerifier != "" {
		t.Error("PKCE should be disabled")
	}
	if q.Get("scope") != DefaultScope {
		t.Errorf("scope = %q, want %q", q.Get("scope"), DefaultScope)
	}
	if req.State == "" || q.Get("state") != req.State {
		t.Errorf("generated state = %q, query state = %q", req.State, q.Get("state"))
	}
	if q.Get("connection_scope") != "" || q.Get("audience") != "" {
		t.Errorf("unexpected optional parameters: %v", q)
	}
}

func TestAuthorizeURL_MissingConnection(t *testing.T) {
	a := NewAuthorizer("tenant.auth0.com", "CLIENT", "", entities.DefaultOptions())
	if _, err := a.AuthorizeURL(nil, "state"); !errors.Is(err, ErrMissingConnection) {
		t.Errorf("AuthorizeURL(nil) error = %v, want ErrMissingConnection", err)
	}
}
