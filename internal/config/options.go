package config

import (
	"errors"
	"fmt"

	"github.com/devilmonastery/lock/internal/domain/entities"
)

// LockOptions is the file form of entities.Options. Unset values keep the widget defaults.
// The same struct is read by the server (yaml.v2) and by the CLI (yaml.v3).
type LockOptions struct {
	Connections                       []string            `yaml:"connections,omitempty"`
	DefaultDatabaseConnection         string              `yaml:"default_database_connection,omitempty"`
	EnterpriseConnectionsUsingWebForm []string            `yaml:"enterprise_connections_using_web_form,omitempty"`
	AuthStyles                        map[string]string   `yaml:"auth_styles,omitempty"`
	ConnectionScopes                  map[string][]string `yaml:"connection_scopes,omitempty"`
	AuthenticationParameters          map[string]string   `yaml:"authentication_parameters,omitempty"`
	Scope                             string              `yaml:"scope,omitempty"`
	Audience                          string              `yaml:"audience,omitempty"`

	UsernameStyle string `yaml:"username_style,omitempty"`
	ButtonSize    string `yaml:"button_size,omitempty"`
	InitialScreen string `yaml:"initial_screen,omitempty"`

	AllowLogIn                      *bool `yaml:"allow_log_in,omitempty"`
	AllowSignUp                     *bool `yaml:"allow_sign_up,omitempty"`
	AllowForgotPassword             *bool `yaml:"allow_forgot_password,omitempty"`
	AllowShowPassword               *bool `yaml:"allow_show_password,omitempty"`
	MustAcceptTerms                 *bool `yaml:"must_accept_terms,omitempty"`
	UseLabeledSubmitButton          *bool `yaml:"use_labeled_submit_button,omitempty"`
	HideMainScreenTitle             *bool `yaml:"hide_main_screen_title,omitempty"`
	RememberLastPasswordlessAccount *bool `yaml:"remember_last_passwordless_account,omitempty"`
	UseCodePasswordless             *bool `yaml:"use_code_passwordless,omitempty"`
	LoginAfterSignUp                *bool `yaml:"login_after_sign_up,omitempty"`
	UsePKCE                         *bool `yaml:"use_pkce,omitempty"`

	CustomFields []CustomFieldConfig `yaml:"custom_fields,omitempty"`

	TermsURL   string `yaml:"terms_url,omitempty"`
	PrivacyURL string `yaml:"privacy_url,omitempty"`
	SupportURL string `yaml:"support_url,omitempty"`
}

// CustomFieldConfig describes an extra sign up field
type CustomFieldConfig struct {
	Key     string `yaml:"key"`
	Type    string `yaml:"type,omitempty"`
	Hint    string `yaml:"hint,omitempty"`
	Icon    string `yaml:"icon,omitempty"`
	Storage string `yaml:"storage,omitempty"`
}

// Build validates the file values and returns the widget options.
// Every problem found is reported, joined into one error.
func (l LockOptions) Build() (entities.Options, error) {
	var errs []error
	b := entities.NewOptionsBuilder()

	if len(l.Connections) > 0 {
		b.WithConnections(l.Connections...)
	}
	if l.DefaultDatabaseConnection != "" {
		b.UseDatabaseConnection(l.DefaultDatabaseConnection)
	}
	if len(l.EnterpriseConnectionsUsingWebForm) > 0 {
		b.WithEnterpriseConnectionsUsingWebForm(l.EnterpriseConnectionsUsingWebForm...)
	}
	for conn, style := range l.AuthStyles {
		b.WithAuthStyle(conn, entities.AuthStyle(style))
	}
	for conn, scopes := range l.ConnectionScopes {
		b.WithConnectionScope(conn, scopes...)
	}
	if len(l.AuthenticationParameters) > 0 {
		b.WithAuthenticationParameters(l.AuthenticationParameters)
	}
	if l.Scope != "" {
		b.WithScope(l.Scope)
	}
	if l.Audience != "" {
		b.WithAudience(l.Audience)
	}

	if style, err := entities.ParseUsernameStyle(l.UsernameStyle); err != nil {
		errs = append(errs, err)
	} else {
		b.WithUsernameStyle(style)
	}
	if size, err := entities.ParseAuthButtonSize(l.ButtonSize); err != nil {
		errs = append(errs, err)
	} else {
		b.WithAuthButtonSize(size)
	}
	if screen, err := entities.ParseInitialScreen(l.InitialScreen); err != nil {
		errs = append(errs, err)
	} else {
		b.InitialScreen(screen)
	}

	flags := []struct {
		value *bool
		set   func(bool) *entities.OptionsBuilder
	}{
		{l.AllowLogIn, b.AllowLogIn},
		{l.AllowSignUp, b.AllowSignUp},
		{l.AllowForgotPassword, b.AllowForgotPassword},
		{l.AllowShowPassword, b.AllowShowPassword},
		{l.MustAcceptTerms, b.MustAcceptTerms},
		{l.UseLabeledSubmitButton, b.UseLabeledSubmitButton},
		{l.HideMainScreenTitle, b.HideMainScreenTitle},
		{l.RememberLastPasswordlessAccount, b.RememberLastPasswordlessAccount},
		{l.UseCodePasswordless, b.UseCodePasswordless},
		{l.LoginAfterSignUp, b.LoginAfterSignUp},
		{l.UsePKCE, b.UsePKCE},
	}
	for _, f := range flags {
		if f.value != nil {
			f.set(*f.value)
		}
	}

	fields := make([]entities.CustomField, 0, len(l.CustomFields))
	for _, cf := range l.CustomFields {
		field, err := cf.toEntity()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fields = append(fields, field)
	}
	if len(fields) > 0 {
		b.WithCustomFields(fields...)
	}

	if l.TermsURL != "" {
		b.SetTermsURL(l.TermsURL)
	}
	if l.PrivacyURL != "" {
		b.SetPrivacyURL(l.PrivacyURL)
	}
	if l.SupportURL != "" {
		b.SetSupportURL(l.SupportURL)
	}

	opts, err := b.Build()
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return entities.Options{}, fmt.Errorf("lock options: %w", errors.Join(errs...))
	}
	return opts, nil
}

func (c CustomFieldConfig) toEntity() (entities.CustomField, error) {
	fieldType, err := entities.ParseFieldType(c.Type)
	if err != nil {
		return entities.CustomField{}, fmt.Errorf("custom field %q: %w", c.Key, err)
	}
	storage, err := entities.ParseFieldStorage(c.Storage)
	if err != nil {
		return entities.CustomField{}, fmt.Errorf("custom field %q: %w", c.Key, err)
	}
	field := entities.NewCustomField(c.Key, fieldType, c.Hint)
	field.Icon = c.Icon
	field.Storage = storage
	return field, nil
}
