// Package application parses and fetches the client information document served by the
// configuration CDN and turns it into connections.
package application

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devilmonastery/lock/internal/domain/entities"
)

// JSONPPrefix opens the client information script served by the CDN
const JSONPPrefix = "Auth0.setClient("

var (
	// ErrInvalidApplication is returned when the client information document can't be parsed
	ErrInvalidApplication = errors.New("invalid application")

	// ErrFetchFailed is returned when the client information could not be downloaded
	ErrFetchFailed = errors.New("failed to fetch the application")
)

// Application is the client information of one application
type Application struct {
	ID                string
	Tenant            string
	AuthorizeURL      string
	CallbackURL       string
	Subscription      string
	HasAllowedOrigins bool
	Connections       []*entities.Connection
}

type applicationJSON struct {
	ID                *string          `json:"id"`
	Tenant            *string          `json:"tenant"`
	Authorize         *string          `json:"authorize"`
	Callback          *string          `json:"callback"`
	Subscription      string           `json:"subscription"`
	HasAllowedOrigins bool             `json:"hasAllowedOrigins"`
	Strategies        *[]*strategyJSON `json:"strategies"`
}

type strategyJSON struct {
	Name        *string           `json:"name"`
	Connections *[]map[string]any `json:"connections"`
}

// Parse accepts either the JSONP script or the bare JSON object
func Parse(body []byte) (*Application, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return ParseApplication(trimmed)
	}
	return ParseJSONP(body)
}

// ParseJSONP strips the JSONP envelope and parses the first JSON object found after it.
// Anything after that object, usually ");", is ignored.
func ParseJSONP(body []byte) (*Application, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte(JSONPPrefix)) {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidApplication, JSONPPrefix)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed[len(JSONPPrefix):]))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSONP: %v", ErrInvalidApplication, err)
	}
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("%w: JSONP payload is not a JSON object", ErrInvalidApplication)
	}
	return ParseApplication(raw)
}

// ParseApplication parses the client information JSON object. Connections are returned
// grouped by strategy, in document order. A malformed connection aborts the parse.
func ParseApplication(data []byte) (*Application, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc applicationJSON
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidApplication, err)
	}

	required := []struct {
		key   string
		value *string
	}{
		{"id", doc.ID},
		{"tenant", doc.Tenant},
		{"authorize", doc.Authorize},
		{"callback", doc.Callback},
	}
	for _, r := range required {
		if r.value == nil {
			return nil, fmt.Errorf("%w: missing required attribute %s", ErrInvalidApplication, r.key)
		}
	}
	if doc.Strategies == nil {
		return nil, fmt.Errorf("%w: missing required attribute strategies", ErrInvalidApplication)
	}

	app := &Application{
		ID:                *doc.ID,
		Tenant:            *doc.Tenant,
		AuthorizeURL:      *doc.Authorize,
		CallbackURL:       *doc.Callback,
		Subscription:      doc.Subscription,
		HasAllowedOrigins: doc.HasAllowedOrigins,
	}

	for i, strategy := range *doc.Strategies {
		if strategy == nil || strategy.Name == nil {
			return nil, fmt.Errorf("%w: strategy %d: missing required attribute name", ErrInvalidApplication, i)
		}
		if strategy.Connections == nil {
			return nil, fmt.Errorf("%w: strategy %q: missing required attribute connections", ErrInvalidApplication, *strategy.Name)
		}
		for j, raw := range *strategy.Connections {
			conn, err := entities.NewConnection(*strategy.Name, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: strategy %q connection %d: %w", ErrInvalidApplication, *strategy.Name, j, err)
			}
			app.Connections = append(app.Connections, conn)
		}
	}

	return app, nil
}
