package db

import (
	"cmp"
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fr0stylo/hookbox/internal/db/queries"
	"github.com/fr0stylo/hookbox/internal/observability"
)

const latencyWindow = 512

// QueryLatency summarizes recent latency samples for one named query.
type QueryLatency struct {
	Name  string
	Count int
	P50   time.Duration
	P95   time.Duration
	Max   time.Duration
}

// latencyRing keeps the most recent latencyWindow samples of one query.
type latencyRing struct {
	samples [latencyWindow]time.Duration
	next    int
	full    bool
}

func (r *latencyRing) add(d time.Duration) {
	r.samples[r.next] = d
	r.next = (r.next + 1) % latencyWindow
	if r.next == 0 {
		r.full = true
	}
}

func (r *latencyRing) sorted() []time.Duration {
	n := r.next
	if r.full {
		n = latencyWindow
	}
	out := slices.Clone(r.samples[:n])
	slices.Sort(out)
	return out
}

type queryLatencyTracker struct {
	mu    sync.Mutex
	rings map[string]*latencyRing
}

func newQueryLatencyTracker() *queryLatencyTracker {
	return &queryLatencyTracker{rings: make(map[string]*latencyRing)}
}

func (t *queryLatencyTracker) observe(name string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ring, ok := t.rings[name]
	if !ok {
		ring = &latencyRing{}
		t.rings[name] = ring
	}
	ring.add(d)
}

func (t *queryLatencyTracker) snapshot() []QueryLatency {
	t.mu.Lock()
	stats := make([]QueryLatency, 0, len(t.rings))
	for name, ring := range t.rings {
		samples := ring.sorted()
		if len(samples) == 0 {
			continue
		}
		last := len(samples) - 1
		stats = append(stats, QueryLatency{
			Name:  name,
			Count: len(samples),
			P50:   samples[last/2],
			P95:   samples[last*95/100],
			Max:   samples[last],
		})
	}
	t.mu.Unlock()

	slices.SortFunc(stats, func(a, b QueryLatency) int {
		if a.P95 != b.P95 {
			return cmp.Compare(b.P95, a.P95)
		}
		return strings.Compare(a.Name, b.Name)
	})
	return stats
}

// QueryLatencyStats returns recent per-query latency, slowest p95 first.
func (c *Database) QueryLatencyStats() []QueryLatency {
	if c == nil || c.tracker == nil {
		return nil
	}
	return c.tracker.snapshot()
}

// instrumentedDBTX records a span and a latency sample for every named
// statement. It wraps both the pool and transactions.
type instrumentedDBTX struct {
	inner   queries.DBTX
	tracker *queryLatencyTracker
	system  string
}

func newInstrumentedDBTX(inner queries.DBTX, tracker *queryLatencyTracker, system string) queries.DBTX {
	if tracker == nil {
		return inner
	}
	return &instrumentedDBTX{inner: inner, tracker: tracker, system: system}
}

// measure starts a span for query and returns the context to run it with and
// a func that closes the span and records the elapsed time.
func (d *instrumentedDBTX) measure(ctx context.Context, query, operation string) (context.Context, func(error)) {
	name := queryName(query)
	ctx, span := observability.StartDBSpan(ctx, d.system, name, operation)
	started := time.Now()
	return ctx, func(err error) {
		d.tracker.observe(name, time.Since(started))
		span.RecordError(err)
		span.End()
	}
}

func (d *instrumentedDBTX) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, done := d.measure(ctx, query, "exec")
	result, err := d.inner.ExecContext(ctx, query, args...)
	done(err)
	return result, err
}

func (d *instrumentedDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	ctx, done := d.measure(ctx, query, "prepare")
	stmt, err := d.inner.PrepareContext(ctx, query)
	done(err)
	return stmt, err
}

func (d *instrumentedDBTX) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	ctx, done := d.measure(ctx, query, "query")
	rows, err := d.inner.QueryContext(ctx, query, args...)
	done(err)
	return rows, err
}

// QueryRowContext defers errors to Scan, so only the round trip is measured.
func (d *instrumentedDBTX) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	ctx, done := d.measure(ctx, query, "query_row")
	row := d.inner.QueryRowContext(ctx, query, args...)
	done(row.Err())
	return row
}

// queryName reads the statement name from its leading "-- name: X" line.
func queryName(query string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(query), "\n")
	rest, ok := strings.CutPrefix(strings.TrimSpace(first), "-- name:")
	if !ok {
		return "unknown"
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "unknown"
	}
	return fields[0]
}
