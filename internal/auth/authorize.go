// Package auth builds the web authorization requests used by connections that can't (or
// shouldn't) exchange credentials natively.
package auth

import (
	"errors"
	"slices"
	"strings"

	"golang.org/x/oauth2"

	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/pkg/urlutil"
)

// DefaultScope is requested when the options don't set one
const DefaultScope = "openid"

var ErrMissingConnection = errors.New("connection is required")

// AuthorizeRequest is a ready to open authorization URL and the values needed to finish the flow
type AuthorizeRequest struct {
	URL   string `json:"url"`
	State string `json:"state"`
	// CodeVerifier is empty when PKCE is disabled
	CodeVerifier string `json:"code_verifier,omitempty"`
}

// Authorizer builds /authorize URLs for a tenant
type Authorizer struct {
	config  oauth2.Config
	options entities.Options
}

// NewAuthorizer creates an authorizer for the application clientID of the tenant domain
func NewAuthorizer(domain, clientID, redirectURL string, options entities.Options) *Authorizer {
	scope := options.Scope
	if scope == "" {
		scope = DefaultScope
	}
	return &Authorizer{
		config: oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  urlutil.AuthorizeURL(domain),
				TokenURL: urlutil.TokenURL(domain),
			},
			Scopes: strings.Fields(scope),
		},
		options: options.Clone(),
	}
}

// AuthorizeURL returns the authorization request for conn. A random state is generated when
// state is empty.
func (a *Authorizer) AuthorizeURL(conn *entities.Connection, state string) (*AuthorizeRequest, error) {
	if conn == nil {
		return nil, ErrMissingConnection
	}
	if state == "" {
		state = oauth2.GenerateVerifier()
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("connection", conn.Name()),
	}
	if scope, ok := a.options.ConnectionsScope[conn.Name()]; ok && scope != "" {
		opts = append(opts, oauth2.SetAuthURLParam("connection_scope", scope))
	}
	if a.options.Audience != "" {
		opts = append(opts, oauth2.SetAuthURLParam("audience", a.options.Audience))
	}

	// sorted so the URL is stable
	keys := make([]string, 0, len(a.options.AuthenticationParameters))
	for k := range a.options.AuthenticationParameters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		opts = append(opts, oauth2.SetAuthURLParam(k, a.options.AuthenticationParameters[k]))
	}

	req := &AuthorizeRequest{State: state}
	if a.options.UsePKCE {
		req.CodeVerifier = oauth2.GenerateVerifier()
		opts = append(opts, oauth2.S256ChallengeOption(req.CodeVerifier))
	}

	req.URL = a.config.AuthCodeURL(state, opts...)
	return req, nil
}
