package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/devilmonastery/lock/internal/config"
	"github.com/devilmonastery/lock/internal/pkg/urlutil"
)

// ErrNoAccount is returned by commands that need an application when the context has none
var ErrNoAccount = errors.New("no account configured")

// Context represents a named configuration context (like kubectl contexts)
type Context struct {
	Account struct {
		Domain              string `yaml:"domain"`
		ClientID            string `yaml:"client_id"`
		ConfigurationDomain string `yaml:"configuration_domain,omitempty"`
		RedirectURL         string `yaml:"redirect_url,omitempty"`
	} `yaml:"account"`
	Rendering struct {
		Theme string `yaml:"theme"`
	} `yaml:"rendering"`
	Store struct {
		// Path of the passwordless identity file. Empty means the default location.
		Path string `yaml:"path,omitempty"`
	} `yaml:"store,omitempty"`
	Options config.LockOptions `yaml:"options,omitempty"`
}

// Config represents the CLI configuration with multiple contexts
type Config struct {
	CurrentContext string              `yaml:"current-context"`
	Contexts       map[string]*Context `yaml:"contexts"`
}

// DefaultConfig returns the default configuration with an empty "default" context
func DefaultConfig() *Config {
	ctx := &Context{}
	ctx.Rendering.Theme = "auto"

	return &Config{
		CurrentContext: "default",
		Contexts: map[string]*Context{
			"default": ctx,
		},
	}
}

// GetCurrentContext returns the current active context
func (c *Config) GetCurrentContext() (*Context, error) {
	return c.GetContext(c.CurrentContext)
}

// GetContext returns the named context
func (c *Config) GetContext(name string) (*Context, error) {
	if name == "" {
		return nil, fmt.Errorf("no current context set")
	}
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// SetCurrentContext sets the current active context
func (c *Config) SetCurrentContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q does not exist", name)
	}
	c.CurrentContext = name
	return nil
}

// AddContext adds or updates a context
func (c *Config) AddContext(name string, ctx *Context) {
	if c.Contexts == nil {
		c.Contexts = make(map[string]*Context)
	}
	c.Contexts[name] = ctx
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if name == c.CurrentContext {
		return fmt.Errorf("cannot delete current context %q", name)
	}
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q does not exist", name)
	}
	delete(c.Contexts, name)
	return nil
}

// ContextNames returns the context names in sorted order
func (c *Config) ContextNames() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".lock"), nil
}

// LoadConfig loads configuration from ~/.lock, creating it with defaults when missing
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		defaultConfig := DefaultConfig()
		if err := SaveConfig(defaultConfig); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaultConfig, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure we have a valid current context
	if config.CurrentContext == "" && len(config.Contexts) > 0 {
		config.CurrentContext = config.ContextNames()[0]
	}

	return &config, nil
}

// SaveConfig saves configuration to ~/.lock
func SaveConfig(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CheckAccount returns ErrNoAccount when the context can't identify an application
func (ctx *Context) CheckAccount(name string) error {
	if ctx.Account.Domain == "" || ctx.Account.ClientID == "" {
		return fmt.Errorf("%w in context %q, run 'lock config add-context %s --domain DOMAIN --client-id ID'",
			ErrNoAccount, name, name)
	}
	return nil
}

// ConfigurationURL returns where the client information of this context is downloaded from
func (ctx *Context) ConfigurationURL() string {
	return urlutil.ConfigurationURL(ctx.Account.Domain, ctx.Account.ConfigurationDomain)
}

// Theme returns the glamour style name, "auto" when unset
func (ctx *Context) Theme() string {
	if ctx == nil || ctx.Rendering.Theme == "" {
		return "auto"
	}
	return ctx.Rendering.Theme
}
