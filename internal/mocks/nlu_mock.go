package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tucalendariobot/tucalendariobot/internal/nlu"
)

// MockUnderstander is a mock implementation of the NLU client
type MockUnderstander struct {
	mock.Mock
}

func (m *MockUnderstander) Understand(ctx context.Context, text string) (*nlu.Result, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*nlu.Result), args.Error(1)
}
