package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fr0stylo/hookbox/internal/app/domain"
	"github.com/fr0stylo/hookbox/internal/app/ports"
)

// MockMessageStore is a testify mock of ports.MessageStore.
type MockMessageStore struct {
	mock.Mock
}

// NewMockMessageStore creates a mock that asserts its expectations on cleanup.
func NewMockMessageStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockMessageStore {
	m := &MockMessageStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockMessageStore) InsertMessage(ctx context.Context, msg domain.Message) (bool, error) {
	args := m.Called(ctx, msg)
	return args.Bool(0), args.Error(1)
}

func (m *MockMessageStore) ListMessages(ctx context.Context, filter domain.ListFilter) ([]domain.Message, int64, error) {
	args := m.Called(ctx, filter)
	var messages []domain.Message
	if value := args.Get(0); value != nil {
		messages = value.([]domain.Message)
	}
	return messages, args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageStore) CountMessages(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockIngestionObserver is a testify mock of ports.IngestionObserver.
type MockIngestionObserver struct {
	mock.Mock
}

// NewMockIngestionObserver creates a mock that asserts its expectations on cleanup.
func NewMockIngestionObserver(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockIngestionObserver {
	m := &MockIngestionObserver{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockIngestionObserver) ObserveIngestion(ctx context.Context, outcome ports.IngestionOutcome, source string) {
	m.Called(ctx, outcome, source)
}

var (
	_ ports.MessageStore      = (*MockMessageStore)(nil)
	_ ports.IngestionObserver = (*MockIngestionObserver)(nil)
)
