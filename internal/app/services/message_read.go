package services

import (
	"context"

	"github.com/fr0stylo/hookbox/internal/app/domain"
	"github.com/fr0stylo/hookbox/internal/app/ports"
)

// MessageReadService serves paginated message listings.
type MessageReadService struct {
	store ports.MessageStore
}

// NewMessageReadService constructs a read service.
func NewMessageReadService(store ports.MessageStore) *MessageReadService {
	return &MessageReadService{store: store}
}

// List returns one page of messages matching filter.
func (s *MessageReadService) List(ctx context.Context, filter domain.ListFilter) (domain.Page, error) {
	if err := filter.Validate(); err != nil {
		return domain.Page{}, err
	}
	messages, total, err := s.store.ListMessages(ctx, filter)
	if err != nil {
		return domain.Page{}, &StorageError{Op: "list messages", Err: err}
	}
	return domain.NewPage(filter, messages, total), nil
}
