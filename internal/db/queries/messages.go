package queries

import (
	"context"
	"strings"
)

// Message is one row of the messages table.
type Message struct {
	MessageID string
	Timestamp string
	Source    string
	RawData   string
	CreatedAt string
}

const insertMessage = `-- name: InsertMessage :execrows
INSERT INTO messages (message_id, "timestamp", source, raw_data, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (message_id) DO NOTHING
`

// InsertMessageParams are the columns written by InsertMessage.
type InsertMessageParams struct {
	MessageID string
	Timestamp string
	Source    string
	RawData   string
	CreatedAt string
}

// InsertMessage inserts a row unless message_id exists and returns the affected row count.
func (q *Queries) InsertMessage(ctx context.Context, arg InsertMessageParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, q.rebind(insertMessage),
		arg.MessageID,
		arg.Timestamp,
		arg.Source,
		arg.RawData,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countMessages = `-- name: CountMessages :one
SELECT COUNT(*) FROM messages
`

// CountMessages returns the number of stored messages.
func (q *Queries) CountMessages(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countMessages)
	var count int64
	err := row.Scan(&count)
	return count, err
}

// MessageFilter narrows ListMessages and CountFilteredMessages. Empty fields do not filter.
type MessageFilter struct {
	Source string
	Start  string
	End    string
}

func (f MessageFilter) where() (string, []interface{}) {
	clauses := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if f.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, f.Source)
	}
	if f.Start != "" {
		clauses = append(clauses, `"timestamp" >= ?`)
		args = append(args, f.Start)
	}
	if f.End != "" {
		clauses = append(clauses, `"timestamp" <= ?`)
		args = append(args, f.End)
	}
	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND ") + "\n", args
}

const countFilteredMessages = `-- name: CountFilteredMessages :one
SELECT COUNT(*) FROM messages
`

// CountFilteredMessages counts rows matching filter.
func (q *Queries) CountFilteredMessages(ctx context.Context, filter MessageFilter) (int64, error) {
	where, args := filter.where()
	row := q.db.QueryRowContext(ctx, q.rebind(countFilteredMessages+where), args...)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listMessages = `-- name: ListMessages :many
SELECT message_id, "timestamp", source, raw_data, created_at
FROM messages
`

const listMessagesOrder = `ORDER BY "timestamp" DESC, message_id DESC
LIMIT ? OFFSET ?
`

// ListMessagesParams selects one page of a filtered listing.
type ListMessagesParams struct {
	MessageFilter
	Limit  int64
	Offset int64
}

// ListMessages returns matching rows, newest timestamp first.
func (q *Queries) ListMessages(ctx context.Context, arg ListMessagesParams) ([]Message, error) {
	where, args := arg.where()
	args = append(args, arg.Limit, arg.Offset)
	rows, err := q.db.QueryContext(ctx, q.rebind(listMessages+where+listMessagesOrder), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Message, 0, arg.Limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.MessageID, &m.Timestamp, &m.Source, &m.RawData, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
