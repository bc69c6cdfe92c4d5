package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const clientInfo = `Auth0.setClient({
  "id": "CLIENTID",
  "tenant": "overmind",
  "authorize": "https://overmind.auth0.com/authorize",
  "callback": "http://localhost:3000/",
  "strategies": [
    {"name": "auth0", "connections": [{"name": "Username-Password-Authentication", "showSignup": true, "showForgot": true}]},
    {"name": "ad", "connections": [{"name": "MyAD", "domain": "auth10.com", "domain_aliases": ["dev.auth10.com"]}]},
    {"name": "twitter", "connections": [{"name": "twitter"}]},
    {"name": "sms", "connections": [{"name": "sms"}]}
  ]
});`

// setupHome points the CLI config and store at a temp dir and writes the client info fixture
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	file := filepath.Join(home, "client.js")
	if err := os.WriteFile(file, []byte(clientInfo), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return file
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigCommands(t *testing.T) {
	setupHome(t)

	if out, err := runCLI(t, "config", "current-context"); err != nil || strings.TrimSpace(out) != "default" {
		t.Fatalf("current-context = %q, %v", out, err)
	}
	if _, err := runCLI(t, "config", "add-context", "eu", "--domain", "tenant.eu.auth0.com", "--client-id", "abc"); err != nil {
		t.Fatalf("add-context error: %v", err)
	}
	if _, err := runCLI(t, "config", "use-context", "eu"); err != nil {
		t.Fatalf("use-context error: %v", err)
	}

	out, err := runCLI(t, "config", "list-contexts")
	if err != nil {
		t.Fatalf("list-contexts error: %v", err)
	}
	if !strings.Contains(out, "*") || !strings.Contains(out, "tenant.eu.auth0.com") {
		t.Errorf("list-contexts output:\n%s", out)
	}

	out, err = runCLI(t, "config", "show")
	if err != nil {
		t.Fatalf("show error: %v", err)
	}
	if !strings.Contains(out, "Configuration URL: https://cdn.eu.auth0.com") {
		t.Errorf("show output:\n%s", out)
	}

	if _, err := runCLI(t, "config", "delete-context", "eu"); err == nil {
		t.Error("deleting the current context should fail")
	}
	if _, err := runCLI(t, "config", "delete-context", "default"); err != nil {
		t.Errorf("delete-context error: %v", err)
	}

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if config.CurrentContext != "eu" || len(config.Contexts) != 1 {
		t.Errorf("saved config = %+v", config)
	}
}

func TestConnectionsCommand(t *testing.T) {
	file := setupHome(t)

	out, err := runCLI(t, "connections", "--file", file)
	if err != nil {
		t.Fatalf("connections error: %v", err)
	}
	for _, want := range []string{"Username-Password-Authentication", "MyAD", "twitter", "sms", "enterprise"} {
		if !strings.Contains(out, want) {
			t.Errorf("connections output missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, "connections", "--file", file, "-o", "json")
	if err != nil {
		t.Fatalf("connections -o json error: %v", err)
	}
	var conns []map[string]any
	if err := json.Unmarshal([]byte(out), &conns); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(conns) != 4 {
		t.Errorf("len(connections) = %d", len(conns))
	}

	if _, err := runCLI(t, "connections", "--file", file, "-o", "xml"); err == nil {
		t.Error("expected error for unknown output format")
	}
}

func TestResolveCommand(t *testing.T) {
	file := setupHome(t)

	out, err := runCLI(t, "resolve", "--file", file, "-o", "json")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	var cfg struct {
		DefaultDatabase struct {
			Name string `json:"name"`
		} `json:"default_database"`
		PasswordlessMode string `json:"passwordless_mode"`
		AllowSignUp      bool   `json:"allow_sign_up"`
	}
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if cfg.DefaultDatabase.Name != "Username-Password-Authentication" || cfg.PasswordlessMode != "sms_code" || !cfg.AllowSignUp {
		t.Errorf("resolved = %+v", cfg)
	}

	out, err = runCLI(t, "resolve", "--file", file)
	if err != nil {
		t.Fatalf("resolve markdown error: %v", err)
	}
	if !strings.Contains(out, "# CLIENTID (overmind)") {
		t.Errorf("markdown output:\n%s", out)
	}
}

func TestMatchCommand(t *testing.T) {
	file := setupHome(t)

	out, err := runCLI(t, "match", "john@dev.auth10.com", "--file", file)
	if err != nil {
		t.Fatalf("match error: %v", err)
	}
	for _, want := range []string{"connection: MyAD", "username: john", "flow: native"} {
		if !strings.Contains(out, want) {
			t.Errorf("match output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, "match", "john@other.com", "--file", file); err == nil {
		t.Error("expected error for an unmatched domain")
	}
}

func TestAuthorizeCommand(t *testing.T) {
	file := setupHome(t)
	config := DefaultConfig()
	ctx := config.Contexts["default"]
	ctx.Account.Domain = "overmind.auth0.com"
	ctx.Account.ClientID = "CLIENTID"
	ctx.Account.RedirectURL = "http://localhost:3000/"
	ctx.Options.ConnectionScopes = map[string][]string{"twitter": {"email"}}
	if err := SaveConfig(config); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	out, err := runCLI(t, "authorize", "twitter", "--state", "xyz", "--file", file)
	if err != nil {
		t.Fatalf("authorize error: %v", err)
	}
	var req struct {
		URL          string `json:"url"`
		State        string `json:"state"`
		CodeVerifier string `json:"code_verifier"`
	}
	if err := json.Unmarshal([]byte(out), &req); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if !strings.HasPrefix(req.URL, "https://overmind.auth0.com/authorize?") {
		t.Errorf("URL = %q", req.URL)
	}
	for _, want := range []string{"connection=twitter", "connection_scope=email", "state=xyz", "client_id=CLIENTID", "code_challenge_method=S256"} {
		if !strings.Contains(req.URL, want) {
			t.Errorf("URL %q missing %q", req.URL, want)
		}
	}
	if req.State != "xyz" || req.CodeVerifier == "" {
		t.Errorf("request = %+v", req)
	}

	if _, err := runCLI(t, "authorize", "nope", "--file", file); err == nil {
		t.Error("expected error for an unknown connection")
	}
}

func TestPasswordlessCommands(t *testing.T) {
	file := setupHome(t)

	out, err := runCLI(t, "passwordless", "show", "--file", file)
	if err != nil || !strings.Contains(out, "No passwordless identity remembered") {
		t.Fatalf("show before remember = %q, %v", out, err)
	}

	if _, err := runCLI(t, "passwordless", "remember", "+541122334455", "--country", "ar", "--dial-code", "+54", "--file", file); err != nil {
		t.Fatalf("remember error: %v", err)
	}
	out, err = runCLI(t, "passwordless", "show", "--file", file)
	if err != nil {
		t.Fatalf("show error: %v", err)
	}
	for _, want := range []string{"identity: 1122334455", "country: AR (+54)", "logged in before: true"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, "passwordless", "remember", "x", "--country", "ar", "--file", file); err == nil {
		t.Error("--country without --dial-code should fail")
	}

	if _, err := runCLI(t, "passwordless", "forget", "--file", file); err != nil {
		t.Fatalf("forget error: %v", err)
	}
	out, err = runCLI(t, "passwordless", "show", "--file", file)
	if err != nil || !strings.Contains(out, "No passwordless identity remembered") {
		t.Errorf("show after forget = %q, %v", out, err)
	}
}

func TestCommandsRequireAccount(t *testing.T) {
	setupHome(t)

	_, err := runCLI(t, "connections")
	if !errors.Is(err, ErrNoAccount) {
		t.Errorf("connections without account error = %v, want ErrNoAccount", err)
	}

	if _, err := runCLI(t, "resolve", "--context", "missing"); err == nil {
		t.Error("expected error for an unknown context")
	}
}
