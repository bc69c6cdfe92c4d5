package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/devilmonastery/lock/internal/pkg/urlutil"
)

// Config represents the lock server configuration
type Config struct {
	Account     AccountConfig  `yaml:"account"`
	Server      ServerConfig   `yaml:"server"`
	Cache       CacheConfig    `yaml:"cache"`
	Logging     LoggingConfig  `yaml:"logging"`
	Store       StoreConfig    `yaml:"store"`
	Database    DatabaseConfig `yaml:"database"`
	Lock        LockOptions    `yaml:"lock"`
	Environment string         `yaml:"environment" default:"local"` // local, dev, prod
}

// AccountConfig identifies the application whose connections are served
type AccountConfig struct {
	Domain   string `yaml:"domain"`
	ClientID string `yaml:"client_id"`
	// ConfigurationDomain overrides where the client info document is fetched from
	ConfigurationDomain string `yaml:"configuration_domain,omitempty"`
	RedirectURL         string `yaml:"redirect_url,omitempty"`
}

// ConfigurationURL returns the base URL the client info document is downloaded from
func (c *Config) ConfigurationURL() string {
	return urlutil.ConfigurationURL(c.Account.Domain, c.Account.ConfigurationDomain)
}

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	Host string `yaml:"host" default:"localhost"`
	Port int    `yaml:"port" default:"8080"`
}

// Address returns host:port for net.Listen
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// CacheConfig controls how long a fetched configuration is reused
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" default:"5m"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"json"`
	File   string `yaml:"file,omitempty"`
}

// Store types for remembered passwordless identities
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// StoreConfig selects where passwordless identities are kept
type StoreConfig struct {
	Type string `yaml:"type" default:"file"`
	Path string `yaml:"path,omitempty"` // file store only
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	Database string `yaml:"database" default:"lock"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode" default:"disable"` // disable, require, verify-ca, verify-full
}

// ConnectionString returns the PostgreSQL connection string
func (p *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}
