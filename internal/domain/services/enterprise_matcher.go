package services

import (
	"slices"
	"strings"

	"github.com/devilmonastery/lock/internal/domain/entities"
)

// EnterpriseConnectionMatcher finds the enterprise connection that owns an e-mail domain
type EnterpriseConnectionMatcher struct {
	connections []*entities.Connection
}

// NewEnterpriseConnectionMatcher creates a matcher over a copy of the given connections
func NewEnterpriseConnectionMatcher(connections []*entities.Connection) *EnterpriseConnectionMatcher {
	return &EnterpriseConnectionMatcher{connections: slices.Clone(connections)}
}

// Parse returns the first connection whose domain set contains the e-mail's domain, ignoring
// case. Aliases of a connection without a domain never match. It returns nil when the e-mail
// has no domain or nothing matches.
func (m *EnterpriseConnectionMatcher) Parse(email string) *entities.Connection {
	domain, ok := extractDomain(email)
	if !ok {
		return nil
	}
	domain = strings.ToLower(domain)
	for _, c := range m.connections {
		if _, ok := c.DomainSet()[domain]; ok {
			return c
		}
	}
	return nil
}

// ExtractUsername returns the part of the e-mail before the first '@'
func (m *EnterpriseConnectionMatcher) ExtractUsername(email string) (string, bool) {
	username, _, found := strings.Cut(email, "@")
	if !found {
		return "", false
	}
	return username, true
}

// DomainForConnection returns the main domain of the connection, "" when it has none
func (m *EnterpriseConnectionMatcher) DomainForConnection(c *entities.Connection) string {
	return c.StringForKey("domain")
}

func extractDomain(email string) (string, bool) {
	_, domain, found := strings.Cut(email, "@")
	if !found || domain == "" {
		return "", false
	}
	return domain, true
}
