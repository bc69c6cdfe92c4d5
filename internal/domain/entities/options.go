package entities

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
)

// ErrInvalidOptions is returned by the OptionsBuilder when a value fails validation
var ErrInvalidOptions = errors.New("invalid options")

// UsernameStyle controls which identifier the database login form asks for
type UsernameStyle int

const (
	UsernameStyleDefault UsernameStyle = iota
	UsernameStyleUsername
	UsernameStyleEmail
)

func (s UsernameStyle) String() string {
	switch s {
	case UsernameStyleUsername:
		return "username"
	case UsernameStyleEmail:
		return "email"
	default:
		return "default"
	}
}

// ParseUsernameStyle converts a string to a UsernameStyle
func ParseUsernameStyle(s string) (UsernameStyle, error) {
	switch strings.ToLower(s) {
	case "", "default":
		return UsernameStyleDefault, nil
	case "username":
		return UsernameStyleUsername, nil
	case "email":
		return UsernameStyleEmail, nil
	default:
		return UsernameStyleDefault, fmt.Errorf("%w: unknown username style %q", ErrInvalidOptions, s)
	}
}

// AuthButtonSize is the size of the social/enterprise buttons
type AuthButtonSize int

const (
	AuthButtonSizeUnspecified AuthButtonSize = iota
	AuthButtonSizeSmall
	AuthButtonSizeBig
)

func (s AuthButtonSize) String() string {
	switch s {
	case AuthButtonSizeSmall:
		return "small"
	case AuthButtonSizeBig:
		return "big"
	default:
		return "unspecified"
	}
}

// ParseAuthButtonSize converts a string to an AuthButtonSize
func ParseAuthButtonSize(s string) (AuthButtonSize, error) {
	switch strings.ToLower(s) {
	case "", "unspecified":
		return AuthButtonSizeUnspecified, nil
	case "small":
		return AuthButtonSizeSmall, nil
	case "big":
		return AuthButtonSizeBig, nil
	default:
		return AuthButtonSizeUnspecified, fmt.Errorf("%w: unknown button size %q", ErrInvalidOptions, s)
	}
}

// InitialScreen is the first screen shown when a database connection is available
type InitialScreen int

const (
	InitialScreenLogIn InitialScreen = iota
	InitialScreenSignUp
	InitialScreenForgotPassword
)

func (s InitialScreen) String() string {
	switch s {
	case InitialScreenSignUp:
		return "sign_up"
	case InitialScreenForgotPassword:
		return "forgot_password"
	default:
		return "log_in"
	}
}

// ParseInitialScreen converts a string to an InitialScreen
func ParseInitialScreen(s string) (InitialScreen, error) {
	switch strings.ToLower(s) {
	case "", "log_in", "login":
		return InitialScreenLogIn, nil
	case "sign_up", "signup":
		return InitialScreenSignUp, nil
	case "forgot_password":
		return InitialScreenForgotPassword, nil
	default:
		return InitialScreenLogIn, fmt.Errorf("%w: unknown initial screen %q", ErrInvalidOptions, s)
	}
}

// Options is the caller supplied configuration of the widget.
// Use NewOptionsBuilder to get validated options with the widget defaults.
type Options struct {
	// Connections restricts the usable connections by name. Empty means no restriction.
	Connections               []string
	DefaultDatabaseConnection string
	// Enterprise connections listed here are authenticated through the web flow
	EnterpriseConnectionsUsingWebForm []string
	AuthStyles                        map[string]AuthStyle
	ConnectionsScope                  map[string]string
	AuthenticationParameters          map[string]string
	Scope                             string
	Audience                          string

	UsernameStyle  UsernameStyle
	AuthButtonSize AuthButtonSize
	InitialScreen  InitialScreen

	AllowLogIn                      bool
	AllowSignUp                     bool
	AllowForgotPassword             bool
	AllowShowPassword               bool
	MustAcceptTerms                 bool
	UseLabeledSubmitButton          bool
	HideMainScreenTitle             bool
	RememberLastPasswordlessAccount bool
	UseCodePasswordless             bool
	LoginAfterSignUp                bool
	UsePKCE                         bool

	CustomFields []CustomField

	TermsURL   string
	PrivacyURL string
	SupportURL string
}

// DefaultOptions returns the options used when the caller changes nothing
func DefaultOptions() Options {
	return Options{
		AuthStyles:               map[string]AuthStyle{},
		ConnectionsScope:         map[string]string{},
		AuthenticationParameters: map[string]string{},
		UsernameStyle:            UsernameStyleDefault,
		InitialScreen:            InitialScreenLogIn,
		AllowLogIn:               true,
		AllowSignUp:              true,
		AllowForgotPassword:      true,
		AllowShowPassword:        true,
		UseLabeledSubmitButton:   true,
		UseCodePasswordless:      true,
		LoginAfterSignUp:         true,
		UsePKCE:                  true,
	}
}

// Clone returns a deep copy of the options
func (o Options) Clone() Options {
	o.Connections = slices.Clone(o.Connections)
	o.EnterpriseConnectionsUsingWebForm = slices.Clone(o.EnterpriseConnectionsUsingWebForm)
	o.AuthStyles = maps.Clone(o.AuthStyles)
	o.ConnectionsScope = maps.Clone(o.ConnectionsScope)
	o.AuthenticationParameters = maps.Clone(o.AuthenticationParameters)
	o.CustomFields = slices.Clone(o.CustomFields)
	return o
}

// OptionsBuilder builds Options starting from DefaultOptions
type OptionsBuilder struct {
	opts Options
	errs []error
}

// NewOptionsBuilder creates a builder holding the default options
func NewOptionsBuilder() *OptionsBuilder {
	return &OptionsBuilder{opts: DefaultOptions()}
}

func (b *OptionsBuilder) WithConnections(names ...string) *OptionsBuilder {
	b.opts.Connections = append([]string(nil), names...)
	return b
}

func (b *OptionsBuilder) UseDatabaseConnection(name string) *OptionsBuilder {
	b.opts.DefaultDatabaseConnection = name
	return b
}

func (b *OptionsBuilder) WithEnterpriseConnectionsUsingWebForm(names ...string) *OptionsBuilder {
	b.opts.EnterpriseConnectionsUsingWebForm = append([]string(nil), names...)
	return b
}

func (b *OptionsBuilder) WithAuthStyle(connection string, style AuthStyle) *OptionsBuilder {
	b.opts.AuthStyles[connection] = style
	return b
}

func (b *OptionsBuilder) WithConnectionScope(connection string, scopes ...string) *OptionsBuilder {
	b.opts.ConnectionsScope[connection] = strings.Join(scopes, ",")
	return b
}

func (b *OptionsBuilder) WithAuthenticationParameters(params map[string]string) *OptionsBuilder {
	maps.Copy(b.opts.AuthenticationParameters, params)
	return b
}

func (b *OptionsBuilder) WithScope(scope string) *OptionsBuilder {
	b.opts.Scope = scope
	return b
}

func (b *OptionsBuilder) WithAudience(audience string) *OptionsBuilder {
	b.opts.Audience = audience
	return b
}

func (b *OptionsBuilder) WithUsernameStyle(style UsernameStyle) *OptionsBuilder {
	b.opts.UsernameStyle = style
	return b
}

func (b *OptionsBuilder) WithAuthButtonSize(size AuthButtonSize) *OptionsBuilder {
	b.opts.AuthButtonSize = size
	return b
}

func (b *OptionsBuilder) InitialScreen(screen InitialScreen) *OptionsBuilder {
	b.opts.InitialScreen = screen
	return b
}

func (b *OptionsBuilder) AllowLogIn(allow bool) *OptionsBuilder {
	b.opts.AllowLogIn = allow
	return b
}

func (b *OptionsBuilder) AllowSignUp(allow bool) *OptionsBuilder {
	b.opts.AllowSignUp = allow
	return b
}

func (b *OptionsBuilder) AllowForgotPassword(allow bool) *OptionsBuilder {
	b.opts.AllowForgotPassword = allow
	return b
}

func (b *OptionsBuilder) AllowShowPassword(allow bool) *OptionsBuilder {
	b.opts.AllowShowPassword = allow
	return b
}

func (b *OptionsBuilder) MustAcceptTerms(must bool) *OptionsBuilder {
	b.opts.MustAcceptTerms = must
	return b
}

func (b *OptionsBuilder) UseLabeledSubmitButton(use bool) *OptionsBuilder {
	b.opts.UseLabeledSubmitButton = use
	return b
}

func (b *OptionsBuilder) HideMainScreenTitle(hide bool) *OptionsBuilder {
	b.opts.HideMainScreenTitle = hide
	return b
}

func (b *OptionsBuilder) RememberLastPasswordlessAccount(remember bool) *OptionsBuilder {
	b.opts.RememberLastPasswordlessAccount = remember
	return b
}

// UseCodePasswordless selects code delivery (true) or magic link delivery (false)
func (b *OptionsBuilder) UseCodePasswordless(useCode bool) *OptionsBuilder {
	b.opts.UseCodePasswordless = useCode
	return b
}

func (b *OptionsBuilder) LoginAfterSignUp(login bool) *OptionsBuilder {
	b.opts.LoginAfterSignUp = login
	return b
}

func (b *OptionsBuilder) UsePKCE(use bool) *OptionsBuilder {
	b.opts.UsePKCE = use
	return b
}

func (b *OptionsBuilder) WithCustomFields(fields ...CustomField) *OptionsBuilder {
	for _, f := range fields {
		if f.Key == "" {
			b.errs = append(b.errs, fmt.Errorf("%w: custom field without key", ErrInvalidOptions))
			continue
		}
		b.opts.CustomFields = append(b.opts.CustomFields, f)
	}
	return b
}

func (b *OptionsBuilder) SetTermsURL(u string) *OptionsBuilder {
	b.opts.TermsURL = b.validURL("terms of service", u)
	return b
}

func (b *OptionsBuilder) SetPrivacyURL(u string) *OptionsBuilder {
	b.opts.PrivacyURL = b.validURL("privacy policy", u)
	return b
}

func (b *OptionsBuilder) SetSupportURL(u string) *OptionsBuilder {
	b.opts.SupportURL = b.validURL("support", u)
	return b
}

func (b *OptionsBuilder) validURL(what, raw string) string {
	if !IsWebURL(raw) {
		b.errs = append(b.errs, fmt.Errorf("%w: the given %s URL doesn't have a valid URL format: %q", ErrInvalidOptions, what, raw))
		return ""
	}
	return raw
}

// Build returns the options, or every validation error found while building them
func (b *OptionsBuilder) Build() (Options, error) {
	if len(b.errs) > 0 {
		return Options{}, errors.Join(b.errs...)
	}
	return b.opts.Clone(), nil
}

// IsWebURL reports whether s is an absolute http or https URL with a host
func IsWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
