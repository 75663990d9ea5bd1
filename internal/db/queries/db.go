// Package queries holds the typed SQL layer over the messages table.
//
// Every statement starts with a "-- name:" line so instrumented connections can
// attribute latency per query. Statements are written with "?" placeholders and
// rebound for the target dialect.
package queries

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// DBTX is satisfied by *sql.DB, *sql.Tx and instrumented wrappers.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Placeholder selects the bind parameter syntax of a SQL dialect.
type Placeholder int

const (
	// Question binds with "?" (sqlite).
	Question Placeholder = iota
	// Dollar binds with "$1", "$2", ... (postgres).
	Dollar
)

// New constructs a query set over db.
func New(db DBTX, placeholder Placeholder) *Queries {
	return &Queries{db: db, placeholder: placeholder}
}

// Queries executes named statements against a DBTX.
type Queries struct {
	db          DBTX
	placeholder Placeholder
}

func (q *Queries) rebind(query string) string {
	return Rebind(q.placeholder, query)
}

// Rebind rewrites "?" placeholders for the given syntax.
func Rebind(placeholder Placeholder, query string) string {
	if placeholder != Dollar || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
