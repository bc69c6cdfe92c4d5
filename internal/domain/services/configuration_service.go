package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/pkg/metrics"
)

// ConnectionFetcher loads the connections of the configured application
type ConnectionFetcher interface {
	FetchConnections(ctx context.Context) ([]*entities.Connection, error)
}

// cachedConfiguration holds a fetched connection list and its resolution until expiresAt
type cachedConfiguration struct {
	connections []*entities.Connection
	config      *Configuration
	expiresAt   time.Time
}

// ConfigurationService keeps the resolved Configuration of one application for a TTL.
// It is safe for concurrent use.
type ConfigurationService struct {
	fetcher  ConnectionFetcher
	resolver *ConfigurationResolver
	options  entities.Options
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
	// recordFetch receives the latency of each fetch, measured on now
	recordFetch func(time.Duration, error)

	mu     sync.RWMutex
	cached *cachedConfiguration
}

// NewConfigurationService creates a service resolving the fetched connections with options
func NewConfigurationService(
	fetcher ConnectionFetcher,
	resolver *ConfigurationResolver,
	options entities.Options,
	ttl time.Duration,
	logger *slog.Logger,
) *ConfigurationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigurationService{
		fetcher:  fetcher,
		resolver: resolver,
		options:  options.Clone(),
		ttl:      ttl,
		logger:   logger.With("component", "configuration_service"),
		now:      time.Now,
		recordFetch: func(d time.Duration, err error) {
			metrics.RecordServiceOperation("configuration", "fetch", d, err)
		},
	}
}

// Options returns a copy of the options used for resolution
func (s *ConfigurationService) Options() entities.Options {
	return s.options.Clone()
}

// Current returns the resolved Configuration, fetching the connections when the cache expired
func (s *ConfigurationService) Current(ctx context.Context) (*Configuration, error) {
	cached, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return cached.config, nil
}

// Connections returns every connection of the application, before any filtering
func (s *ConfigurationService) Connections(ctx context.Context) ([]*entities.Connection, error) {
	cached, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(cached.connections), nil
}

// Invalidate drops the cached configuration so the next call fetches again
func (s *ConfigurationService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		metrics.CacheEvictions.WithLabelValues("configuration", "application").Inc()
	}
	s.cached = nil
}

func (s *ConfigurationService) load(ctx context.Context) (*cachedConfiguration, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()

	if cached != nil && s.now().Before(cached.expiresAt) {
		metrics.RecordCacheLookup("configuration", "application", true)
		return cached, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// another goroutine may have refreshed while we waited for the lock
	if s.cached != nil && s.now().Before(s.cached.expiresAt) {
		metrics.RecordCacheLookup("configuration", "application", true)
		return s.cached, nil
	}
	metrics.RecordCacheLookup("configuration", "application", false)

	start := s.now()
	connections, err := s.fetcher.FetchConnections(ctx)
	s.recordFetch(s.now().Sub(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch connections: %w", err)
	}

	s.cached = &cachedConfiguration{
		connections: connections,
		config:      s.resolver.Resolve(connections, s.options),
		expiresAt:   s.now().Add(s.ttl),
	}
	s.logger.Info("configuration refreshed",
		slog.Int("connections", len(connections)),
		slog.String("passwordless_mode", s.cached.config.PasswordlessMode().String()),
		slog.Duration("ttl", s.ttl))
	return s.cached, nil
}
