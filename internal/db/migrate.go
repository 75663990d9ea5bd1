package db

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

func (c *Database) migrationProvider() (*goose.Provider, error) {
	var (
		dialect goose.Dialect
		dir     string
	)
	switch c.driver {
	case DriverPostgres:
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	default:
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	}

	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(dialect, c.db, fsys)
	if err != nil {
		return nil, fmt.Errorf("create migration provider: %w", err)
	}
	return provider, nil
}

// MigrateUp applies every pending migration.
func (c *Database) MigrateUp(ctx context.Context) ([]*goose.MigrationResult, error) {
	provider, err := c.migrationProvider()
	if err != nil {
		return nil, err
	}
	return provider.Up(ctx)
}

// MigrateDown rolls back the most recent migration.
func (c *Database) MigrateDown(ctx context.Context) (*goose.MigrationResult, error) {
	provider, err := c.migrationProvider()
	if err != nil {
		return nil, err
	}
	return provider.Down(ctx)
}

// MigrationStatus lists every known migration and whether it is applied.
func (c *Database) MigrationStatus(ctx context.Context) ([]*goose.MigrationStatus, error) {
	provider, err := c.migrationProvider()
	if err != nil {
		return nil, err
	}
	return provider.Status(ctx)
}
