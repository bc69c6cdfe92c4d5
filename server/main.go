package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"

	"github.com/devilmonastery/lock/internal/application"
	"github.com/devilmonastery/lock/internal/config"
	"github.com/devilmonastery/lock/internal/domain/repositories"
	"github.com/devilmonastery/lock/internal/domain/services"
	"github.com/devilmonastery/lock/internal/infrastructure/database/postgres"
	"github.com/devilmonastery/lock/internal/infrastructure/filestore"
	"github.com/devilmonastery/lock/internal/pkg/idgen"
	"github.com/devilmonastery/lock/internal/pkg/logger"
	"github.com/devilmonastery/lock/migrations"
	"github.com/devilmonastery/lock/server/internal/handlers"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// logFlags are the logging flags; values from the config file apply when a flag isn't set
type logFlags struct {
	level         string
	file          string
	toStderr      bool
	alsoToStderr  bool
	format        string
	levelChanged  bool
	fileChanged   bool
	formatChanged bool
}

func newRootCommand() *cobra.Command {
	var (
		forceVersion int
		configPath   string
		logs         logFlags
	)

	cmd := &cobra.Command{
		Use:          "lock-server",
		Short:        "Login configuration server",
		Long:         "Serves the resolved login configuration of one application, and remembers the last passwordless identity",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			logs.levelChanged = cmd.Flags().Changed("log-level")
			logs.fileChanged = cmd.Flags().Changed("log-file")
			logs.formatChanged = cmd.Flags().Changed("log-format")
			return setupServerLogging(logs)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, configPath, forceVersion, logs)
		},
	}

	cmd.Flags().IntVar(&forceVersion, "force-migration", -1, "Force migration version (use to fix dirty migration state)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (optional)")

	// Add logging flags
	cmd.Flags().StringVar(&logs.level, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logs.file, "log-file", "", "Log file path (if specified, logs to file instead of stderr)")
	cmd.Flags().BoolVar(&logs.toStderr, "logtostderr", false, "Log to stderr (default behavior unless --log-file specified)")
	cmd.Flags().BoolVar(&logs.alsoToStderr, "alsologtostderr", false, "Log to both file and stderr")
	cmd.Flags().StringVar(&logs.format, "log-format", "json", "Log format (text, json)")

	return cmd
}

// setupServerLogging configures the global logger for the server
func setupServerLogging(logs logFlags) error {
	// Default to stderr logging unless file is specified
	if logs.file == "" {
		logs.toStderr = true
	}

	globalLogger, err := logger.SetupLogger(logger.Config{
		Level:         logger.ParseLevel(logs.level),
		LogFile:       logs.file,
		LogToStderr:   logs.toStderr,
		AlsoLogStderr: logs.alsoToStderr,
		Format:        logs.format,
	})
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)
	return nil
}

// applyConfigLogging reconfigures logging with the config file values of unset flags
func applyConfigLogging(logs logFlags, cfg config.LoggingConfig) error {
	if !logs.levelChanged {
		logs.level = cfg.Level
	}
	if !logs.fileChanged {
		logs.file = cfg.File
	}
	if !logs.formatChanged {
		logs.format = cfg.Format
	}
	return setupServerLogging(logs)
}

func runServer(ctx context.Context, configPath string, forceVersion int, logs logFlags) error {
	log := slog.Default().With("component", "server")
	log.Info("Starting server initialization")

	// Initialize Snowflake ID generator
	if err := idgen.Initialize(1); err != nil {
		return fmt.Errorf("failed to initialize ID generator: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := applyConfigLogging(logs, cfg.Logging); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	log = logger.WithClient(slog.Default().With("component", "server"), cfg.Account.ClientID)

	identities, closeStore, err := openStore(ctx, cfg, forceVersion, log)
	if err != nil {
		return err
	}
	if identities == nil {
		return nil
	}
	defer closeStore()

	options, err := cfg.Lock.Build()
	if err != nil {
		return err
	}

	configurationURL := cfg.ConfigurationURL()
	fetcher := application.NewFetcher(configurationURL, cfg.Account.ClientID, application.WithLogger(slog.Default()))
	configs := services.NewConfigurationService(fetcher,
		services.NewConfigurationResolver(slog.Default()), options, cfg.Cache.TTL, slog.Default())

	// Warm the cache; a CDN outage at startup isn't fatal, requests retry the fetch
	if _, err := configs.Current(ctx); err != nil {
		log.Warn("Initial configuration fetch failed",
			"url", fetcher.URL(),
			"reason", services.FailureReason(err),
			"error", err)
	}

	router := handlers.NewRouter(handlers.New(configs, identities, cfg.Account, slog.Default()), slog.Default())
	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting",
			"address", srv.Addr,
			"configuration_url", configurationURL,
			"store", cfg.Store.Type,
			"cache_ttl", cfg.Cache.TTL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// openStore opens the configured passwordless identity store. It returns a nil repository
// without error when --force-migration was handled and the server should exit.
func openStore(ctx context.Context, cfg *config.Config, forceVersion int, log *slog.Logger) (repositories.PasswordlessIdentityRepository, func(), error) {
	if cfg.Store.Type == config.StoreFile {
		path := cfg.Store.Path
		if path == "" {
			var err error
			if path, err = filestore.DefaultPath(); err != nil {
				return nil, nil, err
			}
		}
		log.Info("Using file identity store", "path", path)
		return filestore.NewPasswordlessIdentityStore(path), func() {}, nil
	}

	log.Info("Initializing PostgreSQL database",
		"user", cfg.Database.Postgres.User,
		"host", cfg.Database.Postgres.Host,
		"database", cfg.Database.Postgres.Database)

	// Connect with retries, the database may start after us
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 3 * time.Minute

	var pgConn *postgres.Connection
	connect := func() error {
		conn, err := postgres.NewConnection(ctx, cfg.Database.Postgres.ConnectionString())
		if err != nil {
			return err
		}
		pgConn = conn
		return nil
	}
	err := backoff.RetryNotify(connect, backoff.WithContext(bo, ctx), func(err error, d time.Duration) {
		log.Warn("Failed to connect to PostgreSQL", "error", err, "retry_delay", d)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	log.Info("Successfully connected to PostgreSQL")

	closeConn := func() {
		if err := pgConn.Close(); err != nil {
			log.Warn("Failed to close PostgreSQL connection", "error", err)
		}
	}

	// Handle force migration if requested
	if forceVersion >= 0 {
		defer closeConn()
		log.Info("Force setting migration version", "version", forceVersion)
		if err := pgConn.ForceMigrationVersion(migrations.FS, forceVersion); err != nil {
			return nil, nil, fmt.Errorf("failed to force migration version: %w", err)
		}
		log.Info("Migration version forced, exiting", "version", forceVersion)
		return nil, nil, nil
	}

	if err := pgConn.RunMigrations(migrations.FS); err != nil {
		closeConn()
		return nil, nil, fmt.Errorf("failed to run PostgreSQL migrations: %w", err)
	}

	return postgres.NewPasswordlessIdentityRepository(pgConn.DB), closeConn, nil
}
