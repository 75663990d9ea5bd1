package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fr0stylo/hookbox/internal/db"
)

func TestPostgresMessageStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("hookbox_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	runMessageStoreSuite(t, func(t *testing.T) *MessageStore {
		t.Helper()
		database, err := db.Open(db.Options{Driver: db.DriverPostgres, DSN: connStr})
		if err != nil {
			t.Fatalf("open postgres: %v", err)
		}
		if _, err := database.MigrateDown(ctx); err != nil {
			t.Fatalf("reset schema: %v", err)
		}
		if _, err := database.MigrateUp(ctx); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		t.Cleanup(func() { _ = database.Close() })
		return NewMessageStore(database)
	})
}
