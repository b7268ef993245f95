package mocks

import (
	"context"

	"prompt-server/internal/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockPromptEventPublisher is a mock type for the PromptEventPublisher type
type MockPromptEventPublisher struct {
	mock.Mock
}

// PublishPromptEvent provides a mock function with given fields: ctx, event
func (_m *MockPromptEventPublisher) PublishPromptEvent(ctx context.Context, event interfaces.PromptEvent) error {
	ret := _m.Called(ctx, event)

	if rf, ok := ret.Get(0).(func(context.Context, interfaces.PromptEvent) error); ok {
		return rf(ctx, event)
	}
	return ret.Error(0)
}

// NewMockPromptEventPublisher creates a new instance of MockPromptEventPublisher.
func NewMockPromptEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPromptEventPublisher {
	m := &MockPromptEventPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ interfaces.PromptEventPublisher = (*MockPromptEventPublisher)(nil)
