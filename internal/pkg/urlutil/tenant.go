package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	auth0Suffix = ".auth0.com"
	// USCDNURL serves the client information of tenants in the default region
	USCDNURL = "https://cdn.auth0.com"
)

// DomainURL turns a tenant domain like "tenant.auth0.com" into an https base URL without a
// trailing slash. Plain http URLs are upgraded to https.
func DomainURL(domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(domain, "http://"):
		domain = "https://" + strings.TrimPrefix(domain, "http://")
	case !strings.HasPrefix(domain, "https://"):
		domain = "https://" + domain
	}
	return strings.TrimRight(domain, "/")
}

// ConfigurationURL returns the base URL the client information is downloaded from.
// An explicit configurationDomain always wins. Otherwise tenants hosted under auth0.com use
// the CDN of their region (tenant.eu.auth0.com -> https://cdn.eu.auth0.com) and every other
// domain serves its own configuration.
func ConfigurationURL(domain, configurationDomain string) string {
	if configurationDomain != "" {
		return DomainURL(configurationDomain)
	}

	base := DomainURL(domain)
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	host := u.Hostname()
	if !strings.HasSuffix(host, auth0Suffix) {
		return base
	}

	parts := strings.Split(host, ".")
	if len(parts) > 3 {
		return fmt.Sprintf("https://cdn.%s%s", parts[len(parts)-3], auth0Suffix)
	}
	return USCDNURL
}

// ClientInfoURL builds the client information script URL.
// Returns a URL like: {configurationURL}/client/{clientID}.js
func ClientInfoURL(configurationURL, clientID string) string {
	configurationURL = strings.TrimRight(configurationURL, "/")
	return fmt.Sprintf("%s/client/%s.js", configurationURL, url.PathEscape(clientID))
}

// AuthorizeURL returns the authorization endpoint of the tenant.
// Returns a URL like: https://{domain}/authorize
func AuthorizeURL(domain string) string {
	return DomainURL(domain) + "/authorize"
}

// TokenURL returns the token endpoint of the tenant.
// Returns a URL like: https://{domain}/oauth/token
func TokenURL(domain string) string {
	return DomainURL(domain) + "/oauth/token"
}
