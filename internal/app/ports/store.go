package ports

import (
	"context"

	"github.com/fr0stylo/hookbox/internal/app/domain"
)

// MessageStore defines storage operations used by the ingestion and read services.
// It is backend-agnostic: the sql adapter serves both sqlite and postgres.
type MessageStore interface {
	// InsertMessage stores msg unless its message_id already exists.
	// created is false for a duplicate; a duplicate is not an error.
	InsertMessage(ctx context.Context, msg domain.Message) (created bool, err error)
	// ListMessages returns one page of matching messages and the total match count.
	ListMessages(ctx context.Context, filter domain.ListFilter) ([]domain.Message, int64, error)
	CountMessages(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}
