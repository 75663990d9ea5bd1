package db

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/fr0stylo/hookbox/internal/db/queries"
)

func TestNewAppliesMigrationsAndIndexes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, err := New(filepath.Join(t.TempDir(), "nested", "testdb"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if database.Driver() != DriverSQLite {
		t.Fatalf("unexpected driver %q", database.Driver())
	}
	if err := database.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	rows, err := database.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'messages' AND name LIKE 'idx_%'`)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	defer rows.Close()
	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan index: %v", err)
		}
		indexes = append(indexes, name)
	}
	sort.Strings(indexes)
	want := []string{"idx_messages_source", "idx_messages_source_timestamp", "idx_messages_timestamp"}
	if len(indexes) != len(want) {
		t.Fatalf("unexpected indexes: %v", indexes)
	}
	for i := range want {
		if indexes[i] != want[i] {
			t.Fatalf("unexpected indexes: got=%v want=%v", indexes, want)
		}
	}

	statuses, err := database.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status: %v", err)
	}
	if len(statuses) != 1 || statuses[0].State != goose.StateApplied {
		t.Fatalf("expected one applied migration, got %+v", statuses)
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "testdb")
	first, err := New(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	affected, err := first.InsertMessage(ctx, queries.InsertMessageParams{
		MessageID: "m1",
		Timestamp: "2025-01-01T00:00:00.000000Z",
		Source:    "a",
		RawData:   "{}",
		CreatedAt: "2025-01-01T00:00:01.000000Z",
	})
	if err != nil || affected != 1 {
		t.Fatalf("insert: affected=%d err=%v", affected, err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := New(path)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })

	count, err := second.CountMessages(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected persisted row, got %d", count)
	}
}

func TestMigrateDownDropsMessages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, err := New(filepath.Join(t.TempDir(), "testdb"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if _, err := database.MigrateDown(ctx); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if _, err := database.CountMessages(ctx); err == nil {
		t.Fatal("expected messages table to be gone after down migration")
	}
	if _, err := database.MigrateUp(ctx); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if _, err := database.CountMessages(ctx); err != nil {
		t.Fatalf("count after re-migrate: %v", err)
	}
}

func TestOpenRejectsUnknownDriverAndMissingDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(Options{Driver: "mysql"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if _, err := Open(Options{Driver: DriverPostgres}); err == nil {
		t.Fatal("expected error for postgres without DSN")
	}
}

func TestQueryLatencyStatsTracksNamedQueries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, err := New(filepath.Join(t.TempDir(), "testdb"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	for i := 0; i < 3; i++ {
		if _, err := database.CountMessages(ctx); err != nil {
			t.Fatalf("count: %v", err)
		}
	}

	var found bool
	for _, stat := range database.QueryLatencyStats() {
		if stat.Name == "CountMessages" {
			found = true
			if stat.Count != 3 {
				t.Fatalf("expected 3 samples, got %d", stat.Count)
			}
		}
	}
	if !found {
		t.Fatalf("expected CountMessages stats, got %+v", database.QueryLatencyStats())
	}
}

func TestWithTxRecordsQueryLatency(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, err := New(filepath.Join(t.TempDir(), "testdb"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	err = database.WithTx(ctx, func(q *queries.Queries) error {
		if _, err := q.CountFilteredMessages(ctx, queries.MessageFilter{Source: "a"}); err != nil {
			return err
		}
		_, err := q.ListMessages(ctx, queries.ListMessagesParams{Limit: 10})
		return err
	})
	if err != nil {
		t.Fatalf("with tx: %v", err)
	}

	seen := map[string]int{}
	for _, stat := range database.QueryLatencyStats() {
		seen[stat.Name] = stat.Count
	}
	for _, name := range []string{"CountFilteredMessages", "ListMessages"} {
		if seen[name] != 1 {
			t.Fatalf("expected one %s sample, got %+v", name, database.QueryLatencyStats())
		}
	}
}

func TestLatencyTrackerKeepsRecentWindow(t *testing.T) {
	t.Parallel()

	tracker := newQueryLatencyTracker()
	for i := 1; i <= latencyWindow+88; i++ {
		tracker.observe("ListMessages", time.Duration(i)*time.Millisecond)
	}
	tracker.observe("CountMessages", time.Second)

	stats := tracker.snapshot()
	if len(stats) != 2 {
		t.Fatalf("expected two queries, got %+v", stats)
	}
	if stats[0].Name != "CountMessages" {
		t.Fatalf("expected slowest p95 first, got %+v", stats)
	}
	list := stats[1]
	if list.Count != latencyWindow {
		t.Fatalf("expected window of %d, got %d", latencyWindow, list.Count)
	}
	if list.Max != time.Duration(latencyWindow+88)*time.Millisecond {
		t.Fatalf("unexpected max %s", list.Max)
	}
	if list.P50 <= 88*time.Millisecond {
		t.Fatalf("expected oldest samples to be evicted, p50=%s", list.P50)
	}
}

func TestQueryName(t *testing.T) {
	t.Parallel()

	if got := queryName("-- name: ListMessages :many\nSELECT 1"); got != "ListMessages" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := queryName("SELECT 1"); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}
