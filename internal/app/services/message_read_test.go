package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fr0stylo/hookbox/internal/app/domain"
	portmocks "github.com/fr0stylo/hookbox/internal/app/ports/mocks"
)

func TestMessageReadService_List_BuildsPageMetadata(t *testing.T) {
	store := portmocks.NewMockMessageStore(t)
	svc := NewMessageReadService(store)

	filter := domain.ListFilter{Page: 3, PageSize: 10, Source: "a"}
	rows := []domain.Message{{MessageID: "m21"}, {MessageID: "m22"}, {MessageID: "m23"}, {MessageID: "m24"}, {MessageID: "m25"}}
	store.On("ListMessages", mock.Anything, filter).Return(rows, int64(25), nil).Once()

	page, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, page.Messages, 5)
	require.Equal(t, int64(25), page.Total)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, 3, page.Page)
	require.Equal(t, 10, page.PageSize)
}

func TestMessageReadService_List_RejectsInvalidFilter(t *testing.T) {
	store := portmocks.NewMockMessageStore(t)
	svc := NewMessageReadService(store)

	_, err := svc.List(context.Background(), domain.ListFilter{Page: 0, PageSize: 10})
	require.True(t, domain.IsValidation(err))
	store.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
}

func TestMessageReadService_List_WrapsStoreError(t *testing.T) {
	store := portmocks.NewMockMessageStore(t)
	svc := NewMessageReadService(store)

	store.On("ListMessages", mock.Anything, mock.Anything).Return(nil, int64(0), errors.New("no such table")).Once()

	_, err := svc.List(context.Background(), domain.ListFilter{Page: 1, PageSize: 10})
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
}
