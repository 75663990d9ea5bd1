package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	// Postgres driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	// SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/fr0stylo/hookbox/internal/db/queries"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Driver names a supported storage backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

const defaultSQLitePath = "data/app"

// Options selects and configures the backend.
type Options struct {
	Driver Driver
	// Path is the sqlite file path without the .sqlite suffix.
	Path string
	// DSN is the postgres connection string.
	DSN string
	// SkipMigrations leaves the schema untouched on open.
	SkipMigrations bool
}

// Database wraps the message queries with the shared connection.
type Database struct {
	*queries.Queries
	db          *sql.DB
	driver      Driver
	placeholder queries.Placeholder
	tracker     *queryLatencyTracker
}

// New opens the SQLite database at the provided path and applies migrations.
func New(path string, openParams ...string) (*Database, error) {
	return open(Options{Driver: DriverSQLite, Path: path}, openParams...)
}

// Open opens the backend described by opts.
func Open(opts Options) (*Database, error) {
	return open(opts)
}

func open(opts Options, openParams ...string) (*Database, error) {
	var (
		sqlDriver   string
		dsn         string
		placeholder queries.Placeholder
	)

	switch opts.Driver {
	case "", DriverSQLite:
		opts.Driver = DriverSQLite
		path := strings.TrimSpace(opts.Path)
		if path == "" {
			path = defaultSQLitePath
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		sqlDriver, dsn, placeholder = "sqlite", sqliteDSN(path, openParams...), queries.Question
	case DriverPostgres:
		dsn = strings.TrimSpace(opts.DSN)
		if dsn == "" {
			return nil, fmt.Errorf("postgres DSN is required")
		}
		sqlDriver, placeholder = "pgx", queries.Dollar
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	tracker := newQueryLatencyTracker()
	wrapped := newInstrumentedDBTX(db, tracker, string(opts.Driver))
	database := &Database{
		Queries:     queries.New(wrapped, placeholder),
		db:          db,
		driver:      opts.Driver,
		placeholder: placeholder,
		tracker:     tracker,
	}

	if !opts.SkipMigrations {
		if _, err := database.MigrateUp(context.Background()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return database, nil
}

func sqliteDSN(path string, openParams ...string) string {
	values := url.Values{}
	values.Add("_pragma", "busy_timeout(5000)")
	values.Add("_pragma", "journal_mode(WAL)")
	values.Add("_pragma", "synchronous(NORMAL)")
	values.Add("_pragma", "temp_store(MEMORY)")
	values.Add("_pragma", "cache_size(-200000)")
	values.Add("_pragma", "wal_autocheckpoint(1000)")

	for _, param := range openParams {
		part := strings.TrimSpace(strings.TrimPrefix(param, "&"))
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		values.Add(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	return fmt.Sprintf("file:%s.sqlite?%s", path, values.Encode())
}

// Driver reports the backend in use.
func (c *Database) Driver() Driver {
	return c.driver
}

// Ping checks that the backend is reachable.
func (c *Database) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (c *Database) Close() error {
	return c.db.Close()
}

// WithTx runs fn within a transaction. Statements run through the same
// instrumentation as the pool.
func (c *Database) WithTx(ctx context.Context, fn func(*queries.Queries) error) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	q := queries.New(newInstrumentedDBTX(tx, c.tracker, string(c.driver)), c.placeholder)
	if err := fn(q); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}
	return tx.Commit()
}
