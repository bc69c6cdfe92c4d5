package services

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/pkg/metrics"
)

// Connection names that select a passwordless mode
const (
	passwordlessEmail = "email"
	passwordlessSMS   = "sms"
)

// ConfigurationResolver combines an application's connections with the caller options
// into a Configuration. It holds no state and is safe for concurrent use.
type ConfigurationResolver struct {
	logger *slog.Logger
}

// NewConfigurationResolver creates a resolver. A nil logger uses slog.Default().
func NewConfigurationResolver(logger *slog.Logger) *ConfigurationResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigurationResolver{logger: logger.With("component", "configuration_resolver")}
}

// Resolve builds the Configuration for the given connections and options. It never fails:
// missing or contradictory options degrade to empty lists, a disabled passwordless mode and
// false flags. Neither the connections nor the options are modified.
func (r *ConfigurationResolver) Resolve(connections []*entities.Connection, options entities.Options) *Configuration {
	allowed := make(map[string]struct{}, len(options.Connections))
	for _, name := range options.Connections {
		allowed[name] = struct{}{}
	}

	c := &Configuration{
		defaultDatabase: r.selectDefaultDatabase(filterConnections(connections, allowed, entities.AuthTypeDatabase), options.DefaultDatabaseConnection),
		enterprise:      webFormOverrides(filterConnections(connections, allowed, entities.AuthTypeEnterprise), options.EnterpriseConnectionsUsingWebForm),
		passwordless:    filterConnections(connections, allowed, entities.AuthTypePasswordless),
		social:          filterConnections(connections, allowed, entities.AuthTypeSocial),
	}

	c.defaultPasswordless = selectDefaultPasswordless(c.passwordless)
	c.passwordlessMode = passwordlessModeFor(c.defaultPasswordless, options.UseCodePasswordless)

	if db := c.defaultDatabase; db != nil {
		c.allowLogIn = options.AllowLogIn
		c.allowSignUp = options.AllowSignUp && db.ShowSignUp()
		c.allowForgotPassword = db.ShowForgot() && options.AllowForgotPassword
		c.usernameRequired = db.RequiresUsername()
		c.initialScreen = options.InitialScreen
	}

	c.allowShowPassword = options.AllowShowPassword
	c.mustAcceptTerms = options.MustAcceptTerms
	c.useLabeledSubmitButton = options.UseLabeledSubmitButton
	c.hideMainScreenTitle = options.HideMainScreenTitle
	c.passwordlessAutoSubmit = options.RememberLastPasswordlessAccount
	c.usernameStyle = options.UsernameStyle
	c.socialButtonStyle = options.AuthButtonSize
	c.loginAfterSignUp = options.LoginAfterSignUp
	c.extraSignUpFields = slices.Clone(options.CustomFields)
	if c.extraSignUpFields == nil {
		c.extraSignUpFields = []entities.CustomField{}
	}
	c.authStyles = maps.Clone(options.AuthStyles)

	c.termsURL = options.TermsURL
	if c.termsURL == "" {
		c.termsURL = DefaultTermsURL
	}
	c.privacyURL = options.PrivacyURL
	if c.privacyURL == "" {
		c.privacyURL = DefaultPrivacyURL
	}
	c.supportURL = options.SupportURL

	recordResolution(c)
	return c
}

// filterConnections keeps the connections of the given type whose name is allowed.
// An empty allow-list allows every name.
func filterConnections(connections []*entities.Connection, allowed map[string]struct{}, authType entities.AuthType) []*entities.Connection {
	var out []*entities.Connection
	for _, conn := range connections {
		if conn == nil || conn.Type() != authType {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[conn.Name()]; !ok {
				continue
			}
		}
		out = append(out, conn)
	}
	return out
}

func (r *ConfigurationResolver) selectDefaultDatabase(databases []*entities.Connection, requested string) *entities.Connection {
	if len(databases) == 0 {
		if requested != "" {
			r.logger.Warn("default database connection not found and no database connection is available",
				slog.String("requested", requested))
			metrics.DefaultDatabaseFallbacks.Inc()
		}
		return nil
	}
	if requested == "" {
		return databases[0]
	}
	for _, db := range databases {
		if db.Name() == requested {
			return db
		}
	}

	r.logger.Warn("default database connection not found, falling back to the first available one",
		slog.String("requested", requested),
		slog.String("fallback", databases[0].Name()))
	metrics.DefaultDatabaseFallbacks.Inc()
	return databases[0]
}

// webFormOverrides returns the enterprise list with every connection named in webForm
// replaced by a copy that can only authenticate through the web flow.
func webFormOverrides(enterprise []*entities.Connection, webForm []string) []*entities.Connection {
	if len(webForm) == 0 {
		return enterprise
	}
	out := make([]*entities.Connection, len(enterprise))
	for i, conn := range enterprise {
		if !slices.Contains(webForm, conn.Name()) {
			out[i] = conn
			continue
		}
		webOnly := conn.Clone()
		webOnly.DisableActiveFlow()
		out[i] = webOnly
	}
	return out
}

// selectDefaultPasswordless prefers the connection named "email", otherwise the first one
func selectDefaultPasswordless(passwordless []*entities.Connection) *entities.Connection {
	switch len(passwordless) {
	case 0:
		return nil
	case 1:
		return passwordless[0]
	}
	for _, conn := range passwordless {
		if conn.Name() == passwordlessEmail {
			return conn
		}
	}
	return passwordless[0]
}

func passwordlessModeFor(conn *entities.Connection, useCode bool) entities.PasswordlessMode {
	if conn == nil {
		return entities.PasswordlessModeDisabled
	}
	switch conn.Name() {
	case passwordlessEmail:
		if useCode {
			return entities.PasswordlessModeEmailCode
		}
		return entities.PasswordlessModeEmailLink
	case passwordlessSMS:
		if useCode {
			return entities.PasswordlessModeSMSCode
		}
		return entities.PasswordlessModeSMSLink
	default:
		return entities.PasswordlessModeDisabled
	}
}

func recordResolution(c *Configuration) {
	metrics.ConfigurationResolutions.WithLabelValues(c.passwordlessMode.String()).Inc()

	database := 0
	if c.defaultDatabase != nil {
		database = 1
	}
	metrics.ResolvedConnections.WithLabelValues(entities.AuthTypeDatabase.String()).Set(float64(database))
	metrics.ResolvedConnections.WithLabelValues(entities.AuthTypeEnterprise.String()).Set(float64(len(c.enterprise)))
	metrics.ResolvedConnections.WithLabelValues(entities.AuthTypePasswordless.String()).Set(float64(len(c.passwordless)))
	metrics.ResolvedConnections.WithLabelValues(entities.AuthTypeSocial.String()).Set(float64(len(c.social)))
}
