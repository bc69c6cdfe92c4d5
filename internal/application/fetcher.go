package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/pkg/metrics"
	"github.com/devilmonastery/lock/internal/pkg/urlutil"
)

// maxBodySize bounds the client information document
const maxBodySize = 5 << 20

// ErrDocumentTooLarge is returned when the client information exceeds the body size limit
var ErrDocumentTooLarge = errors.New("client information document too large")

// Fetcher downloads the client information of one application from the configuration CDN
type Fetcher struct {
	configurationURL string
	clientID         string
	client           *http.Client
	newBackOff       func() backoff.BackOff
	maxBodySize      int64
	logger           *slog.Logger
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the HTTP client. Its transport is wrapped with metrics.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		c := *client
		c.Transport = metrics.NewCDNMetricsTransport(client.Transport)
		f.client = &c
	}
}

// WithBackOff sets the retry policy. Each fetch gets a fresh policy from newBackOff.
func WithBackOff(newBackOff func() backoff.BackOff) FetcherOption {
	return func(f *Fetcher) {
		f.newBackOff = newBackOff
	}
}

// WithMaxBodySize sets the largest client information document accepted, in bytes
func WithMaxBodySize(n int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a fetcher for clientID. configurationURL is the CDN base URL,
// see urlutil.ConfigurationURL.
func NewFetcher(configurationURL, clientID string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		configurationURL: configurationURL,
		clientID:         clientID,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: metrics.NewCDNMetricsTransport(nil),
		},
		newBackOff:  defaultBackOff,
		maxBodySize: maxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "application_fetcher")
	return f
}

func defaultBackOff() backoff.BackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     500 * time.Millisecond,
		RandomizationFactor: 0.5,
		Multiplier:          1.5,
		MaxInterval:         5 * time.Second,
		MaxElapsedTime:      30 * time.Second,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
}

// URL returns the address of the client information script
func (f *Fetcher) URL() string {
	return urlutil.ClientInfoURL(f.configurationURL, f.clientID)
}

// Fetch downloads and parses the client information. Network errors and 5xx responses are
// retried; other statuses and parse errors are not.
func (f *Fetcher) Fetch(ctx context.Context) (*Application, error) {
	target := f.URL()
	if _, err := url.Parse(target); err != nil {
		return nil, fmt.Errorf("%w: invalid configuration URL: %v", ErrFetchFailed, err)
	}

	var body []byte
	operation := func() error {
		b, err := f.get(ctx, target)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	bo := f.newBackOff()
	bo.Reset()
	err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), func(err error, d time.Duration) {
		metrics.CDNRetries.Inc()
		f.logger.Warn("fetching application failed, retrying",
			slog.String("url", target),
			slog.Duration("retry_in", d),
			slog.String("error", err.Error()))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	app, err := Parse(body)
	if err != nil {
		f.logger.Error("could not parse application", slog.String("url", target), slog.String("error", err.Error()))
		return nil, err
	}

	f.logger.Info("application received",
		slog.String("client_id", app.ID),
		slog.String("tenant", app.Tenant),
		slog.Int("connections", len(app.Connections)))
	return app, nil
}

// FetchConnections fetches the application and returns its connections
func (f *Fetcher) FetchConnections(ctx context.Context) ([]*entities.Connection, error) {
	app, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return app.Connections, nil
}

// StatusError is returned for unexpected HTTP responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func (f *Fetcher) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/javascript, application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	tooLarge := int64(len(body)) > f.maxBodySize
	if tooLarge {
		body = body[:f.maxBodySize]
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}
	if tooLarge {
		return nil, backoff.Permanent(fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, f.maxBodySize))
	}
	return body, nil
}

// IsNotFound reports whether err is a 404 from the CDN, usually an unknown client ID
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}
