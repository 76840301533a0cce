package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tucalendariobot/tucalendariobot/internal/gcal"
)

// MockEventCreator is a mock implementation of the calendar client
type MockEventCreator struct {
	mock.Mock
}

func (m *MockEventCreator) CreateEvent(ctx context.Context, calendarID string, input gcal.EventInput) (*gcal.CreatedEvent, error) {
	args := m.Called(ctx, calendarID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gcal.CreatedEvent), args.Error(1)
}
