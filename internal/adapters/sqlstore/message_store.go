// Package sqlstore implements the message store on top of internal/db.
package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fr0stylo/hookbox/internal/app/domain"
	"github.com/fr0stylo/hookbox/internal/app/ports"
	"github.com/fr0stylo/hookbox/internal/db"
	"github.com/fr0stylo/hookbox/internal/db/queries"
)

// MessageStore persists messages through the shared database handle.
type MessageStore struct {
	db *db.Database
}

// NewMessageStore constructs a store over database.
func NewMessageStore(database *db.Database) *MessageStore {
	return &MessageStore{db: database}
}

// InsertMessage relies on the message_id primary key: the conflicting
// statement affects zero rows and the existing row is left untouched.
func (s *MessageStore) InsertMessage(ctx context.Context, msg domain.Message) (bool, error) {
	affected, err := s.db.InsertMessage(ctx, queries.InsertMessageParams{
		MessageID: msg.MessageID,
		Timestamp: msg.Timestamp,
		Source:    msg.Source,
		RawData:   string(msg.RawData),
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		return false, fmt.Errorf("insert message %q: %w", msg.MessageID, err)
	}
	return affected == 1, nil
}

// ListMessages counts and fetches one page inside a single transaction.
func (s *MessageStore) ListMessages(ctx context.Context, filter domain.ListFilter) ([]domain.Message, int64, error) {
	params := queries.ListMessagesParams{
		MessageFilter: toQueryFilter(filter),
		Limit:         int64(filter.PageSize),
		Offset:        filter.Offset(),
	}

	var (
		rows  []queries.Message
		total int64
	)
	err := s.db.WithTx(ctx, func(q *queries.Queries) error {
		var err error
		total, err = q.CountFilteredMessages(ctx, params.MessageFilter)
		if err != nil {
			return fmt.Errorf("count messages: %w", err)
		}
		if params.Offset >= total {
			return nil
		}
		rows, err = q.ListMessages(ctx, params)
		if err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	messages := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, toDomainMessage(row))
	}
	return messages, total, nil
}

// CountMessages returns the number of stored messages.
func (s *MessageStore) CountMessages(ctx context.Context) (int64, error) {
	return s.db.Queries.CountMessages(ctx)
}

// Ping checks that the backend is reachable.
func (s *MessageStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func toQueryFilter(filter domain.ListFilter) queries.MessageFilter {
	out := queries.MessageFilter{Source: filter.Source}
	if filter.Start != nil {
		out.Start = domain.FormatTimestamp(*filter.Start)
	}
	if filter.End != nil {
		out.End = domain.FormatTimestamp(*filter.End)
	}
	return out
}

func toDomainMessage(row queries.Message) domain.Message {
	return domain.Message{
		MessageID: row.MessageID,
		Timestamp: row.Timestamp,
		Source:    row.Source,
		RawData:   json.RawMessage(row.RawData),
		CreatedAt: row.CreatedAt,
	}
}

var _ ports.MessageStore = (*MessageStore)(nil)
