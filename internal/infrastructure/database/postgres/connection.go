package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connection manages PostgreSQL database connection
type Connection struct {
	DB *sqlx.DB
}

// NewConnection creates a new PostgreSQL database connection
// connectionString format: "host=localhost port=5432 user=postgres dbname=lock sslmode=disable"
func NewConnection(ctx context.Context, connectionString string) (*Connection, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(0)

	return &Connection{DB: db}, nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.DB.Close()
}

// HealthCheck pings the database
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// newMigrator builds a migrate instance reading the "postgres" directory of migrationFS
func (c *Connection) newMigrator(migrationFS fs.FS) (*migrate.Migrate, error) {
	postgresMigrations, err := fs.Sub(migrationFS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres migrations sub-filesystem: %w", err)
	}

	source, err := iofs.New(postgresMigrations, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(c.DB.DB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending migration. A dirty state left by an interrupted run is
// reset to version 0 on an empty database, or marked clean at the current version otherwise.
func (c *Connection) RunMigrations(migrationFS fs.FS) error {
	m, err := c.newMigrator(migrationFS)
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		target := int(version)
		if c.isDatabaseEmpty() {
			target = 0
		}
		slog.Warn("migration state is dirty, forcing version", slog.Int("version", target))
		if err := m.Force(target); err != nil {
			return fmt.Errorf("failed to force dirty migration to version %d: %w", target, err)
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// isDatabaseEmpty checks if the database has no user tables
func (c *Connection) isDatabaseEmpty() bool {
	var count int
	query := `SELECT COUNT(*) FROM information_schema.tables
              WHERE table_schema = 'public'
              AND table_name NOT IN ('schema_migrations', 'schema_migration')`
	err := c.DB.Get(&count, query)
	return err == nil && count == 0
}

// ForceMigrationVersion forces the migration version to a specific number
// This should only be used to recover from dirty migration states
func (c *Connection) ForceMigrationVersion(migrationFS fs.FS, version int) error {
	m, err := c.newMigrator(migrationFS)
	if err != nil {
		return err
	}
	if err := m.Force(version); err != nil {
		return fmt.Errorf("failed to force migration version %d: %w", version, err)
	}
	return nil
}
