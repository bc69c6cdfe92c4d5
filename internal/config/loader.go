package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// ErrInvalidConfig is returned when the loaded configuration fails validation
var ErrInvalidConfig = errors.New("invalid config")

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// DefaultConfigPaths defines the default locations to search for configuration files
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./configs/config.yaml",
	"./configs/config.yml",
	"/etc/lock/config.yaml",
	"/etc/lock/config.yml",
}

// Defaults returns the configuration used before any file is applied
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Type: StoreFile,
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "lock",
				User:     "postgres",
				SSLMode:  "disable",
			},
		},
		Environment: "local",
	}
}

// Load loads the configuration from the specified file or default locations
func Load(configPath string) (*Config, error) {
	config := Defaults()

	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" && fileExists(configPath) {
		slog.Info("loading config", slog.String("path", configPath))
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(expandEnvVars(data), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("config file %s not found", configPath)
	} else {
		slog.Info("no config file found, using defaults")
	}

	if err := validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// findConfigFile searches for a configuration file in default locations
func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// validate performs basic validation on the configuration
func validate(config *Config) error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if config.Account.Domain == "" {
		invalid("account.domain is required")
	}
	if config.Account.ClientID == "" {
		invalid("account.client_id is required")
	}
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		invalid("server.port must be between 1 and 65535")
	}
	if config.Cache.TTL < 0 {
		invalid("cache.ttl must not be negative")
	}
	if config.Logging.Format != "json" && config.Logging.Format != "text" {
		invalid("logging.format must be json or text, got %q", config.Logging.Format)
	}

	switch config.Store.Type {
	case StoreFile:
	case StorePostgres:
		pg := config.Database.Postgres
		if pg.Host == "" {
			invalid("postgres host is required")
		}
		if pg.Database == "" {
			invalid("postgres database name is required")
		}
		if pg.User == "" {
			invalid("postgres user is required")
		}
	default:
		invalid("store.type must be %s or %s, got %q", StoreFile, StorePostgres, config.Store.Type)
	}

	if _, err := config.Lock.Build(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	return errors.Join(errs...)
}
