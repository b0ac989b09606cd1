package connection

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/marketsync/internal/domain"
)

// MockEventChannel is a mock implementation of the EventChannel interface
type MockEventChannel struct {
	mock.Mock
}

func (m *MockEventChannel) Open(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEventChannel) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockEventChannel) Emit(event string, payload any) error {
	args := m.Called(event, payload)
	return args.Error(0)
}

func (m *MockEventChannel) On(event string, h Handler) {
	m.Called(event, h)
}

func (m *MockEventChannel) RemoveAllHandlers() {
	m.Called()
}

func (m *MockEventChannel) Status() domain.ChannelStatus {
	args := m.Called()
	return args.Get(0).(domain.ChannelStatus)
}
