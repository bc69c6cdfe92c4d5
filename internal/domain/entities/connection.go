package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidConnection is returned when a raw connection record cannot be turned into a Connection
var ErrInvalidConnection = errors.New("invalid connection")

// AuthType is the coarse category of a connection, derived from its strategy
type AuthType int

const (
	AuthTypeDatabase AuthType = iota
	AuthTypeEnterprise
	AuthTypePasswordless
	AuthTypeSocial
)

// String returns the lower-case name of the auth type
func (t AuthType) String() string {
	switch t {
	case AuthTypeDatabase:
		return "database"
	case AuthTypeEnterprise:
		return "enterprise"
	case AuthTypePasswordless:
		return "passwordless"
	default:
		return "social"
	}
}

// PasswordStrength is the password policy level configured on a database connection
type PasswordStrength int

const (
	PasswordStrengthNone PasswordStrength = iota
	PasswordStrengthLow
	PasswordStrengthFair
	PasswordStrengthGood
	PasswordStrengthExcellent
)

func (s PasswordStrength) String() string {
	switch s {
	case PasswordStrengthLow:
		return "low"
	case PasswordStrengthFair:
		return "fair"
	case PasswordStrengthGood:
		return "good"
	case PasswordStrengthExcellent:
		return "excellent"
	default:
		return "none"
	}
}

// PasswordComplexity holds the password policy of a connection and an optional minimum length override
type PasswordComplexity struct {
	Policy            PasswordStrength
	MinLengthOverride *int
}

// Default username length bounds applied when the connection validation rules are unusable
const (
	MinUsernameLength = 1
	MaxUsernameLength = 15
)

// Connection attribute keys
const (
	keyName                      = "name"
	keyValidation                = "validation"
	keyUsername                  = "username"
	keyMin                       = "min"
	keyMax                       = "max"
	keyPasswordPolicy            = "passwordPolicy"
	keyPasswordComplexityOptions = "password_complexity_options"
	keyMinLength                 = "min_length"
	keyDomain                    = "domain"
	keyDomainAliases             = "domain_aliases"
	keyShowSignUp                = "showSignup"
	keyShowForgot                = "showForgot"
	keyRequiresUsername          = "requires_username"
)

var enterpriseStrategies = map[string]struct{}{
	"ad":            {},
	"adfs":          {},
	"auth0-adldap":  {},
	"custom":        {},
	"google-apps":   {},
	"google-openid": {},
	"ip":            {},
	"mscrm":         {},
	"office365":     {},
	"pingfederate":  {},
	"samlp":         {},
	"sharepoint":    {},
	"waad":          {},
}

// Only these strategies may authenticate with the resource owner (active) flow
var activeFlowStrategies = map[string]struct{}{
	"ad":   {},
	"adfs": {},
	"waad": {},
}

// Connection is a single identity provider connection of an application
type Connection struct {
	strategy string
	name     string
	values   map[string]any

	authType           AuthType
	minUsernameLength  int
	maxUsernameLength  int
	customDatabase     bool
	passwordComplexity PasswordComplexity
	activeFlowAllowed  bool
}

// NewConnection builds a Connection for the given strategy from its raw attributes.
// The name attribute is required and is removed from the stored attributes.
// The caller's map is never modified.
func NewConnection(strategy string, raw map[string]any) (*Connection, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: must have at least one value", ErrInvalidConnection)
	}
	name, ok := raw[keyName].(string)
	if !ok {
		return nil, fmt.Errorf("%w: must have a non-null name", ErrInvalidConnection)
	}

	values := maps.Clone(raw)
	delete(values, keyName)

	c := &Connection{
		strategy: strategy,
		name:     name,
		values:   values,
		authType: authTypeForStrategy(strategy),
	}
	_, c.activeFlowAllowed = activeFlowStrategies[strategy]
	c.parseUsernameLength()
	c.parsePasswordComplexity()
	return c, nil
}

func authTypeForStrategy(strategy string) AuthType {
	switch strategy {
	case "auth0":
		return AuthTypeDatabase
	case "sms", "email":
		return AuthTypePasswordless
	}
	if _, ok := enterpriseStrategies[strategy]; ok {
		return AuthTypeEnterprise
	}
	return AuthTypeSocial
}

// Name returns the unique connection name
func (c *Connection) Name() string {
	return c.name
}

// Strategy returns the provider family of the connection (e.g. "auth0", "ad", "facebook")
func (c *Connection) Strategy() string {
	return c.strategy
}

// Type returns the auth type derived from the strategy
func (c *Connection) Type() AuthType {
	return c.authType
}

// Values returns a copy of the connection attributes
func (c *Connection) Values() map[string]any {
	return maps.Clone(c.values)
}

// Value returns the raw attribute stored under key
func (c *Connection) Value(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// ValueForKey returns the attribute stored under key when it holds a T.
// Values of any other type are reported as missing.
func ValueForKey[T any](c *Connection, key string) (T, bool) {
	v, ok := c.values[key].(T)
	return v, ok
}

// BooleanForKey returns the boolean attribute stored under key, false when missing or not a boolean
func (c *Connection) BooleanForKey(key string) bool {
	v, _ := ValueForKey[bool](c, key)
	return v
}

// StringForKey returns the string attribute stored under key, "" when missing or not a string
func (c *Connection) StringForKey(key string) string {
	v, _ := ValueForKey[string](c, key)
	return v
}

func (c *Connection) ShowSignUp() bool {
	return c.BooleanForKey(keyShowSignUp)
}

func (c *Connection) ShowForgot() bool {
	return c.BooleanForKey(keyShowForgot)
}

func (c *Connection) RequiresUsername() bool {
	return c.BooleanForKey(keyRequiresUsername)
}

// MinUsernameLength returns the minimum username length accepted by this connection
func (c *Connection) MinUsernameLength() int {
	return c.minUsernameLength
}

// MaxUsernameLength returns the maximum username length accepted by this connection
func (c *Connection) MaxUsernameLength() int {
	return c.maxUsernameLength
}

// IsCustomDatabase reports whether the connection has no username validation rule at all
func (c *Connection) IsCustomDatabase() bool {
	return c.customDatabase
}

// PasswordComplexity returns the password policy of the connection
func (c *Connection) PasswordComplexity() PasswordComplexity {
	pc := c.passwordComplexity
	if pc.MinLengthOverride != nil {
		v := *pc.MinLengthOverride
		pc.MinLengthOverride = &v
	}
	return pc
}

// IsActiveFlowEnabled reports whether credentials can be exchanged directly, without a web redirect
func (c *Connection) IsActiveFlowEnabled() bool {
	if !c.activeFlowAllowed {
		return false
	}
	_, ok := activeFlowStrategies[c.strategy]
	return ok
}

// DisableActiveFlow turns the active flow off for this connection. It can't be turned back on.
func (c *Connection) DisableActiveFlow() {
	c.activeFlowAllowed = false
}

// Clone returns a copy of the connection. Attributes are shared since they are never modified
// after construction.
func (c *Connection) Clone() *Connection {
	clone := *c
	return &clone
}

// DomainSet returns the lower-cased domain and domain aliases of an enterprise connection
func (c *Connection) DomainSet() map[string]struct{} {
	domains := make(map[string]struct{})
	domain, ok := ValueForKey[string](c, keyDomain)
	if !ok {
		return domains
	}
	domains[strings.ToLower(domain)] = struct{}{}
	for _, alias := range c.DomainAliases() {
		domains[strings.ToLower(alias)] = struct{}{}
	}
	return domains
}

// DomainAliases returns the domain_aliases attribute. Non-string elements are skipped.
func (c *Connection) DomainAliases() []string {
	switch aliases := c.values[keyDomainAliases].(type) {
	case []string:
		return aliases
	case []any:
		out := make([]string, 0, len(aliases))
		for _, a := range aliases {
			if s, ok := a.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func (c *Connection) parseUsernameLength() {
	validation, ok := ValueForKey[map[string]any](c, keyValidation)
	if !ok {
		c.setCustomDatabase()
		return
	}
	username, ok := validation[keyUsername].(map[string]any)
	if !ok {
		c.setCustomDatabase()
		return
	}

	c.minUsernameLength = MinUsernameLength
	c.maxUsernameLength = MaxUsernameLength
	minLength, minOK := intValue(username[keyMin])
	maxLength, maxOK := intValue(username[keyMax])
	if !minOK || !maxOK || minLength < MinUsernameLength || minLength > maxLength {
		return
	}
	c.minUsernameLength = minLength
	c.maxUsernameLength = maxLength
}

// A custom or imported database imposes no username length policy
func (c *Connection) setCustomDatabase() {
	c.customDatabase = true
	c.minUsernameLength = MinUsernameLength
	c.maxUsernameLength = math.MaxInt
}

func (c *Connection) parsePasswordComplexity() {
	c.passwordComplexity.Policy = ParsePasswordStrength(c.StringForKey(keyPasswordPolicy))

	opts, ok := ValueForKey[map[string]any](c, keyPasswordComplexityOptions)
	if !ok {
		return
	}
	delete(c.values, keyPasswordComplexityOptions)
	if minLength, ok := intValue(opts[keyMinLength]); ok {
		c.passwordComplexity.MinLengthOverride = &minLength
	}
}

// ParsePasswordStrength converts a passwordPolicy value to a PasswordStrength
func ParsePasswordStrength(policy string) PasswordStrength {
	switch policy {
	case "excellent":
		return PasswordStrengthExcellent
	case "good":
		return PasswordStrengthGood
	case "fair":
		return PasswordStrengthFair
	case "low":
		return PasswordStrengthLow
	default:
		return PasswordStrengthNone
	}
}

// intValue reads numbers decoded from JSON, Go integers and base-10 numeric strings
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// connectionJSON is the wire form of a Connection
type connectionJSON struct {
	Name       string         `json:"name"`
	Strategy   string         `json:"strategy"`
	Type       string         `json:"type"`
	ActiveFlow bool           `json:"active_flow"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (c *Connection) MarshalJSON() ([]byte, error) {
	return json.Marshal(connectionJSON{
		Name:       c.name,
		Strategy:   c.strategy,
		Type:       c.authType.String(),
		ActiveFlow: c.IsActiveFlowEnabled(),
		Attributes: c.values,
	})
}
