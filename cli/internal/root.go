package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/lock/internal/application"
	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/domain/services"
	"github.com/devilmonastery/lock/internal/infrastructure/filestore"
	"github.com/devilmonastery/lock/internal/pkg/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const cliContextKey contextKey = "cliContext"

// CliContext holds shared CLI context
type CliContext struct {
	Config      *Config
	ContextName string
	Context     *Context
	Logger      *slog.Logger

	// file replaces the CDN download with a local client info document
	file string
}

// Global flags
var (
	logLevel      string
	logFile       string
	logToStderr   bool
	alsoLogStderr bool
	logFormat     string
	contextName   string
	appFile       string
)

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	var ctx CliContext

	rootCmd := &cobra.Command{
		Use:           "lock",
		Short:         "Inspect the login configuration of an application",
		Long:          `A command line interface that fetches an application's connections and resolves the login widget configuration from them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}

			ctx.Logger = slog.Default().With("component", "cli")
			ctx.Logger.Debug("CLI started", "command", cmd.Name())

			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx.Config = config
			ctx.file = appFile

			// config commands manage contexts themselves and must work on a broken context
			if cmd.Name() != "config" && (cmd.Parent() == nil || cmd.Parent().Name() != "config") {
				name := contextName
				if name == "" {
					name = config.CurrentContext
				}
				current, err := config.GetContext(name)
				if err != nil {
					return err
				}
				ctx.ContextName = name
				ctx.Context = current
				ctx.Logger = logger.WithCommand(ctx.Logger, cmd.Name()).With("context", name)
			}

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
			return nil
		},
	}

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newConnectionsCommand())
	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newMatchCommand())
	rootCmd.AddCommand(newAuthorizeCommand())
	rootCmd.AddCommand(newPasswordlessCommand())

	rootCmd.PersistentFlags().StringVar(&contextName, "context", "",
		"Context to use instead of the current one")
	rootCmd.PersistentFlags().StringVarP(&appFile, "file", "f", "",
		"Read the client info (JSONP or JSON) from a file instead of downloading it")

	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Log file path (if specified, logs to file instead of stderr)")
	rootCmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false,
		"Log to stderr (default behavior unless --log-file specified)")
	rootCmd.PersistentFlags().BoolVar(&alsoLogStderr, "alsologtostderr", false,
		"Log to both file and stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")

	return rootCmd
}

// setupLogging configures the global logger based on CLI flags
func setupLogging() error {
	if logFile == "" {
		logToStderr = true
	}

	globalLogger, err := logger.SetupLogger(logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       logFile,
		LogToStderr:   logToStderr,
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
	})
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)
	return nil
}

// getCliContext extracts the CLI context from the command context
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}

// application loads the client info from --file or from the configuration CDN
func (c *CliContext) application(ctx context.Context) (*application.Application, error) {
	if c.file != "" {
		data, err := os.ReadFile(c.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", c.file, err)
		}
		return application.Parse(data)
	}

	if err := c.Context.CheckAccount(c.ContextName); err != nil {
		return nil, err
	}
	fetcher := application.NewFetcher(c.Context.ConfigurationURL(), c.Context.Account.ClientID,
		application.WithLogger(c.Logger))
	c.Logger.Debug("fetching client info", slog.String("url", fetcher.URL()))
	return fetcher.Fetch(ctx)
}

// options builds the widget options of the current context
func (c *CliContext) options() (entities.Options, error) {
	return c.Context.Options.Build()
}

// resolve fetches the connections and resolves them with the context options
func (c *CliContext) resolve(ctx context.Context) (*application.Application, *services.Configuration, error) {
	app, err := c.application(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts, err := c.options()
	if err != nil {
		return nil, nil, err
	}
	return app, services.NewConfigurationResolver(c.Logger).Resolve(app.Connections, opts), nil
}

// identityStore opens the passwordless identity file of the current context
func (c *CliContext) identityStore() (*filestore.PasswordlessIdentityStore, error) {
	path := c.Context.Store.Path
	if path == "" {
		var err error
		if path, err = filestore.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return filestore.NewPasswordlessIdentityStore(path), nil
}
