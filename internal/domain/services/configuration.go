package services

import (
	"encoding/json"
	"slices"

	"github.com/devilmonastery/lock/internal/domain/entities"
)

// Fallback legal URLs used when the options leave them unset
const (
	DefaultTermsURL   = "https://auth0.com/terms"
	DefaultPrivacyURL = "https://auth0.com/privacy"
)

// Configuration is the resolved, read-only view of which connections and policies are active.
// It is produced by ConfigurationResolver.Resolve and never changes afterwards.
type Configuration struct {
	defaultDatabase        *entities.Connection
	enterprise             []*entities.Connection
	passwordless           []*entities.Connection
	social                 []*entities.Connection
	defaultPasswordless    *entities.Connection
	passwordlessMode       entities.PasswordlessMode
	authStyles             map[string]entities.AuthStyle
	extraSignUpFields      []entities.CustomField
	termsURL               string
	privacyURL             string
	supportURL             string
	usernameStyle          entities.UsernameStyle
	socialButtonStyle      entities.AuthButtonSize
	initialScreen          entities.InitialScreen
	allowLogIn             bool
	allowSignUp            bool
	allowForgotPassword    bool
	usernameRequired       bool
	allowShowPassword      bool
	mustAcceptTerms        bool
	useLabeledSubmitButton bool
	hideMainScreenTitle    bool
	passwordlessAutoSubmit bool
	loginAfterSignUp       bool
}

// DefaultDatabaseConnection returns the selected database connection, or nil
func (c *Configuration) DefaultDatabaseConnection() *entities.Connection {
	return c.defaultDatabase
}

// EnterpriseConnections returns the usable enterprise connections
func (c *Configuration) EnterpriseConnections() []*entities.Connection {
	return slices.Clone(c.enterprise)
}

// PasswordlessConnections returns the usable passwordless connections
func (c *Configuration) PasswordlessConnections() []*entities.Connection {
	return slices.Clone(c.passwordless)
}

// SocialConnections returns the usable social connections
func (c *Configuration) SocialConnections() []*entities.Connection {
	return slices.Clone(c.social)
}

// DefaultPasswordlessConnection returns the passwordless connection the mode was derived from, or nil
func (c *Configuration) DefaultPasswordlessConnection() *entities.Connection {
	return c.defaultPasswordless
}

func (c *Configuration) PasswordlessMode() entities.PasswordlessMode {
	return c.passwordlessMode
}

// HasClassicConnections reports whether a database, enterprise or social login is available
func (c *Configuration) HasClassicConnections() bool {
	return len(c.social) > 0 || len(c.enterprise) > 0 || c.defaultDatabase != nil
}

// HasPasswordlessConnections reports whether the passwordless screen has something to offer.
// Social connections count too since they are shown alongside the passwordless form.
func (c *Configuration) HasPasswordlessConnections() bool {
	return len(c.social) > 0 || len(c.passwordless) > 0
}

// AuthStyleForConnection returns the style override for the connection name,
// falling back to the default style of its strategy.
func (c *Configuration) AuthStyleForConnection(strategy, connectionName string) entities.AuthStyle {
	if style, ok := c.authStyles[connectionName]; ok {
		return style
	}
	return entities.StyleForStrategy(strategy)
}

// PasswordPolicy returns the password complexity of the default database connection
func (c *Configuration) PasswordPolicy() entities.PasswordComplexity {
	if c.defaultDatabase == nil {
		return entities.PasswordComplexity{Policy: entities.PasswordStrengthNone}
	}
	return c.defaultDatabase.PasswordComplexity()
}

// ShouldUseNativeAuthentication reports whether credentials for conn can be exchanged without a web redirect
func (c *Configuration) ShouldUseNativeAuthentication(conn *entities.Connection) bool {
	return conn != nil && conn.IsActiveFlowEnabled()
}

func (c *Configuration) ExtraSignUpFields() []entities.CustomField {
	return slices.Clone(c.extraSignUpFields)
}

func (c *Configuration) HasExtraFields() bool {
	return len(c.extraSignUpFields) > 0
}

func (c *Configuration) AllowLogIn() bool             { return c.allowLogIn }
func (c *Configuration) AllowSignUp() bool            { return c.allowSignUp }
func (c *Configuration) AllowForgotPassword() bool    { return c.allowForgotPassword }
func (c *Configuration) IsUsernameRequired() bool     { return c.usernameRequired }
func (c *Configuration) AllowShowPassword() bool      { return c.allowShowPassword }
func (c *Configuration) MustAcceptTerms() bool        { return c.mustAcceptTerms }
func (c *Configuration) UseLabeledSubmitButton() bool { return c.useLabeledSubmitButton }
func (c *Configuration) HideMainScreenTitle() bool    { return c.hideMainScreenTitle }
func (c *Configuration) LoginAfterSignUp() bool       { return c.loginAfterSignUp }

// UsePasswordlessAutoSubmit reports whether the last passwordless identity is remembered and submitted
func (c *Configuration) UsePasswordlessAutoSubmit() bool { return c.passwordlessAutoSubmit }

func (c *Configuration) UsernameStyle() entities.UsernameStyle      { return c.usernameStyle }
func (c *Configuration) SocialButtonStyle() entities.AuthButtonSize { return c.socialButtonStyle }

// InitialScreen is only meaningful when a default database connection was selected
func (c *Configuration) InitialScreen() entities.InitialScreen { return c.initialScreen }

func (c *Configuration) TermsURL() string   { return c.termsURL }
func (c *Configuration) PrivacyURL() string { return c.privacyURL }

// SupportURL returns the support URL, "" when none was configured
func (c *Configuration) SupportURL() string { return c.supportURL }

// configurationJSON is the wire form served to UI layers
type configurationJSON struct {
	DefaultDatabase     *entities.Connection   `json:"default_database,omitempty"`
	Enterprise          []*entities.Connection `json:"enterprise"`
	Passwordless        []*entities.Connection `json:"passwordless"`
	Social              []*entities.Connection `json:"social"`
	PasswordlessMode    string                 `json:"passwordless_mode"`
	PasswordPolicy      string                 `json:"password_policy"`
	MinPasswordLength   *int                   `json:"min_password_length,omitempty"`
	AllowLogIn          bool                   `json:"allow_log_in"`
	AllowSignUp         bool                   `json:"allow_sign_up"`
	AllowForgotPassword bool                   `json:"allow_forgot_password"`
	UsernameRequired    bool                   `json:"username_required"`
	AllowShowPassword   bool                   `json:"allow_show_password"`
	MustAcceptTerms     bool                   `json:"must_accept_terms"`
	LabeledSubmitButton bool                   `json:"labeled_submit_button"`
	HideMainScreenTitle bool                   `json:"hide_main_screen_title"`
	PasswordlessAuto    bool                   `json:"passwordless_auto_submit"`
	LoginAfterSignUp    bool                   `json:"login_after_sign_up"`
	UsernameStyle       string                 `json:"username_style"`
	SocialButtonStyle   string                 `json:"social_button_style"`
	InitialScreen       string                 `json:"initial_screen"`
	ExtraSignUpFields   []customFieldJSON      `json:"extra_sign_up_fields"`
	TermsURL            string                 `json:"terms_url"`
	PrivacyURL          string                 `json:"privacy_url"`
	SupportURL          string                 `json:"support_url,omitempty"`
}

type customFieldJSON struct {
	Key     string `json:"key"`
	Type    string `json:"type"`
	Hint    string `json:"hint,omitempty"`
	Icon    string `json:"icon,omitempty"`
	Storage string `json:"storage"`
}

// MarshalJSON implements json.Marshaler
func (c *Configuration) MarshalJSON() ([]byte, error) {
	policy := c.PasswordPolicy()
	fields := make([]customFieldJSON, 0, len(c.extraSignUpFields))
	for _, f := range c.extraSignUpFields {
		fields = append(fields, customFieldJSON{
			Key:     f.Key,
			Type:    f.Type.String(),
			Hint:    f.Hint,
			Icon:    f.Icon,
			Storage: f.Storage.String(),
		})
	}

	return json.Marshal(configurationJSON{
		DefaultDatabase:     c.defaultDatabase,
		Enterprise:          nonNil(c.enterprise),
		Passwordless:        nonNil(c.passwordless),
		Social:              nonNil(c.social),
		PasswordlessMode:    c.passwordlessMode.String(),
		PasswordPolicy:      policy.Policy.String(),
		MinPasswordLength:   policy.MinLengthOverride,
		AllowLogIn:          c.allowLogIn,
		AllowSignUp:         c.allowSignUp,
		AllowForgotPassword: c.allowForgotPassword,
		UsernameRequired:    c.usernameRequired,
		AllowShowPassword:   c.allowShowPassword,
		MustAcceptTerms:     c.mustAcceptTerms,
		LabeledSubmitButton: c.useLabeledSubmitButton,
		HideMainScreenTitle: c.hideMainScreenTitle,
		PasswordlessAuto:    c.passwordlessAutoSubmit,
		LoginAfterSignUp:    c.loginAfterSignUp,
		UsernameStyle:       c.usernameStyle.String(),
		SocialButtonStyle:   c.socialButtonStyle.String(),
		InitialScreen:       c.initialScreen.String(),
		ExtraSignUpFields:   fields,
		TermsURL:            c.termsURL,
		PrivacyURL:          c.privacyURL,
		SupportURL:          c.supportURL,
	})
}

func nonNil(conns []*entities.Connection) []*entities.Connection {
	if conns == nil {
		return []*entities.Connection{}
	}
	return conns
}
