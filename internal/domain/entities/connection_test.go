package entities

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func mustConnection(t *testing.T, strategy string, values map[string]any) *Connection {
	t.Helper()
	c, err := NewConnection(strategy, values)
	if err != nil {
		t.Fatalf("NewConnection(%q) unexpected error: %v", strategy, err)
	}
	return c
}

func TestNewConnection_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{name: "nil values", values: nil},
		{name: "empty values", values: map[string]any{}},
		{name: "missing name", values: map[string]any{"showSignup": true}},
		{name: "null name", values: map[string]any{"name": nil}},
		{name: "non string name", values: map[string]any{"name": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewConnection("auth0", tt.values)
			if !errors.Is(err, ErrInvalidConnection) {
				t.Errorf("NewConnection() error = %v, want ErrInvalidConnection", err)
			}
			if c != nil {
				t.Errorf("NewConnection() = %v, want nil", c)
			}
		})
	}
}

func TestNewConnection_ExtractsName(t *testing.T) {
	raw := map[string]any{"name": "Username-Password-Authentication", "showSignup": true}
	c := mustConnection(t, "auth0", raw)

	if c.Name() != "Username-Password-Authentication" {
		t.Errorf("Name() = %q, want %q", c.Name(), "Username-Password-Authentication")
	}
	if c.Strategy() != "auth0" {
		t.Errorf("Strategy() = %q, want auth0", c.Strategy())
	}
	if _, ok := c.Value("name"); ok {
		t.Error("name should be removed from the connection values")
	}
	if _, ok := raw["name"]; !ok {
		t.Error("caller map should not be modified")
	}
}

func TestConnectionType(t *testing.T) {
	tests := []struct {
		strategy string
		want     AuthType
	}{
		{"auth0", AuthTypeDatabase},
		{"sms", AuthTypePasswordless},
		{"email", AuthTypePasswordless},
		{"ad", AuthTypeEnterprise},
		{"adfs", AuthTypeEnterprise},
		{"auth0-adldap", AuthTypeEnterprise},
		{"custom", AuthTypeEnterprise},
		{"google-apps", AuthTypeEnterprise},
		{"google-openid", AuthTypeEnterprise},
		{"ip", AuthTypeEnterprise},
		{"mscrm", AuthTypeEnterprise},
		{"office365", AuthTypeEnterprise},
		{"pingfederate", AuthTypeEnterprise},
		{"samlp", AuthTypeEnterprise},
		{"sharepoint", AuthTypeEnterprise},
		{"waad", AuthTypeEnterprise},
		{"facebook", AuthTypeSocial},
		{"twitter", AuthTypeSocial},
		{"some-unknown-strategy", AuthTypeSocial},
		{"", AuthTypeSocial},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			c := mustConnection(t, tt.strategy, map[string]any{"name": "conn"})
			if got := c.Type(); got != tt.want {
				t.Errorf("Type() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueForKey(t *testing.T) {
	c := mustConnection(t, "auth0", map[string]any{
		"name":     "db",
		"flag":     true,
		"text":     "value",
		"number":   float64(3),
		"nullable": nil,
	})

	if v, ok := ValueForKey[string](c, "text"); !ok || v != "value" {
		t.Errorf("ValueForKey[string](text) = %q, %v", v, ok)
	}
	if _, ok := ValueForKey[string](c, "flag"); ok {
		t.Error("ValueForKey[string](flag) should report a wrong typed value as missing")
	}
	if _, ok := ValueForKey[bool](c, "missing"); ok {
		t.Error("ValueForKey[bool](missing) should be missing")
	}
	if v, ok := ValueForKey[float64](c, "number"); !ok || v != 3 {
		t.Errorf("ValueForKey[float64](number) = %v, %v", v, ok)
	}
	if !c.BooleanForKey("flag") {
		t.Error("BooleanForKey(flag) = false, want true")
	}
	for _, key := range []string{"text", "missing", "nullable"} {
		if c.BooleanForKey(key) {
			t.Errorf("BooleanForKey(%s) = true, want false", key)
		}
	}
}

func TestUsernameLength(t *testing.T) {
	tests := []struct {
		name       string
		values     map[string]any
		wantMin    int
		wantMax    int
		wantCustom bool
	}{
		{
			name:    "numeric bounds",
			values:  map[string]any{"validation": map[string]any{"username": map[string]any{"min": float64(10), "max": float64(60)}}},
			wantMin: 10,
			wantMax: 60,
		},
		{
			name:    "string bounds",
			values:  map[string]any{"validation": map[string]any{"username": map[string]any{"min": "10", "max": "60"}}},
			wantMin: 10,
			wantMax: 60,
		},
		{
			name:    "json number bounds",
			values:  map[string]any{"validation": map[string]any{"username": map[string]any{"min": json.Number("3"), "max": json.Number("20")}}},
			wantMin: 3,
			wantMax: 20,
		},
		{
			name:    "empty username rule",
			values:  map[string]any{"validation": map[string]any{"username": map[string]any{}}},
			wantMin: 1,
			wantMax: 15,
		},
		{
			name:    "missing max",
			values:  map[string]any{"validation": map[string]any{"username": map[string]any{"min": float64(4)}}},
			wantMin: 1,
			wantMax: 15,
		},
		{
			name:    "inverted bounds",
			values:  map[string]any{"validation": map[string]any{"username": map[string]any{"min": float64(60), "max": float64(10)}}},
			wantMin: 1,
			wantMax: 15,
		},
		{
			name:    "min below one",
			values:  map[string]any{"validation": map[string]any{"username": map[string]any{"min": float64(0), "max": float64(10)}}},
			wantMin: 1,
			wantMax: 15,
		},
		{
			name:    "non numeric string",
			values:  map[string]any{"validation": map[string]any{"username": map[string]any{"min": "ten", "max": "60"}}},
			wantMin: 1,
			wantMax: 15,
		},
		{
			name:       "no validation",
			values:     map[string]any{},
			wantMin:    1,
			wantMax:    math.MaxInt,
			wantCustom: true,
		},
		{
			name:       "validation without username rule",
			values:     map[string]any{"validation": map[string]any{}},
			wantMin:    1,
			wantMax:    math.MaxInt,
			wantCustom: true,
		},
		{
			name:       "validation of the wrong type",
			values:     map[string]any{"validation": "strict"},
			wantMin:    1,
			wantMax:    math.MaxInt,
			wantCustom: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.values["name"] = "Username-Password-Authentication"
			c := mustConnection(t, "auth0", tt.values)
			if c.MinUsernameLength() != tt.wantMin {
				t.Errorf("MinUsernameLength() = %d, want %d", c.MinUsernameLength(), tt.wantMin)
			}
			if c.MaxUsernameLength() != tt.wantMax {
				t.Errorf("MaxUsernameLength() = %d, want %d", c.MaxUsernameLength(), tt.wantMax)
			}
			if c.IsCustomDatabase() != tt.wantCustom {
				t.Errorf("IsCustomDatabase() = %v, want %v", c.IsCustomDatabase(), tt.wantCustom)
			}
		})
	}
}

func TestPasswordComplexity(t *testing.T) {
	tests := []struct {
		policy any
		want   PasswordStrength
	}{
		{"excellent", PasswordStrengthExcellent},
		{"good", PasswordStrengthGood},
		{"fair", PasswordStrengthFair},
		{"low", PasswordStrengthLow},
		{"none", PasswordStrengthNone},
		{"EXCELLENT", PasswordStrengthNone},
		{true, PasswordStrengthNone},
		{nil, PasswordStrengthNone},
	}

	for _, tt := range tests {
		values := map[string]any{"name": "db"}
		if tt.policy != nil {
			values["passwordPolicy"] = tt.policy
		}
		c := mustConnection(t, "auth0", values)
		pc := c.PasswordComplexity()
		if pc.Policy != tt.want {
			t.Errorf("policy %v: PasswordComplexity().Policy = %v, want %v", tt.policy, pc.Policy, tt.want)
		}
		if pc.MinLengthOverride != nil {
			t.Errorf("policy %v: MinLengthOverride = %d, want nil", tt.policy, *pc.MinLengthOverride)
		}
	}
}

func TestPasswordComplexity_MinLengthOverride(t *testing.T) {
	c := mustConnection(t, "auth0", map[string]any{
		"name":                        "db",
		"passwordPolicy":              "good",
		"password_complexity_options": map[string]any{"min_length": float64(123)},
	})

	pc := c.PasswordComplexity()
	if pc.Policy != PasswordStrengthGood {
		t.Errorf("Policy = %v, want good", pc.Policy)
	}
	if pc.MinLengthOverride == nil || *pc.MinLengthOverride != 123 {
		t.Fatalf("MinLengthOverride = %v, want 123", pc.MinLengthOverride)
	}
	if _, ok := c.Value("password_complexity_options"); ok {
		t.Error("password_complexity_options should be consumed from the values")
	}

	*pc.MinLengthOverride = 1
	if got := *c.PasswordComplexity().MinLengthOverride; got != 123 {
		t.Errorf("MinLengthOverride changed through a returned copy: %d", got)
	}
}

func TestActiveFlow(t *testing.T) {
	tests := []struct {
		strategy string
		want     bool
	}{
		{"ad", true},
		{"adfs", true},
		{"waad", true},
		{"auth0-adldap", false},
		{"custom", false},
		{"google-apps", false},
		{"samlp", false},
		{"auth0", false},
		{"facebook", false},
		{"email", false},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			c := mustConnection(t, tt.strategy, map[string]any{"name": "conn"})
			if got := c.IsActiveFlowEnabled(); got != tt.want {
				t.Errorf("IsActiveFlowEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisableActiveFlow(t *testing.T) {
	c := mustConnection(t, "ad", map[string]any{"name": "MyAD"})
	c.DisableActiveFlow()
	if c.IsActiveFlowEnabled() {
		t.Error("IsActiveFlowEnabled() = true after DisableActiveFlow()")
	}
	c.DisableActiveFlow()
	if c.IsActiveFlowEnabled() {
		t.Error("IsActiveFlowEnabled() = true after a second DisableActiveFlow()")
	}
}

func TestClone(t *testing.T) {
	c := mustConnection(t, "waad", map[string]any{"name": "azure", "domain": "example.com"})
	clone := c.Clone()
	clone.DisableActiveFlow()

	if !c.IsActiveFlowEnabled() {
		t.Error("disabling the active flow on a clone changed the original")
	}
	if clone.Name() != "azure" || clone.StringForKey("domain") != "example.com" {
		t.Errorf("clone lost data: name=%q domain=%q", clone.Name(), clone.StringForKey("domain"))
	}
}

func TestDomainSet(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		want   []string
	}{
		{
			name:   "no domain",
			values: map[string]any{"domain_aliases": []any{"ignored.com"}},
			want:   nil,
		},
		{
			name:   "domain only",
			values: map[string]any{"domain": "MyCompany.COM"},
			want:   []string{"mycompany.com"},
		},
		{
			name:   "domain and aliases",
			values: map[string]any{"domain": "mycompany.com", "domain_aliases": []any{"Alias.com", 7, "other.org"}},
			want:   []string{"mycompany.com", "alias.com", "other.org"},
		},
		{
			name:   "string slice aliases",
			values: map[string]any{"domain": "a.com", "domain_aliases": []string{"B.com"}},
			want:   []string{"a.com", "b.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.values["name"] = "enterprise"
			c := mustConnection(t, "ad", tt.values)
			got := c.DomainSet()
			if len(got) != len(tt.want) {
				t.Fatalf("DomainSet() = %v, want %v", got, tt.want)
			}
			for _, d := range tt.want {
				if _, ok := got[d]; !ok {
					t.Errorf("DomainSet() missing %q", d)
				}
			}
		})
	}
}

func TestConnectionMarshalJSON(t *testing.T) {
	c := mustConnection(t, "ad", map[string]any{"name": "MyAD", "domain": "corp.com"})
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if got["name"] != "MyAD" || got["type"] != "enterprise" || got["active_flow"] != true {
		t.Errorf("unexpected JSON: %s", data)
	}
}
