package mocks

import (
	"context"

	"prompt-server/internal/llm"

	"github.com/stretchr/testify/mock"
)

// MockCompleter is a mock type for the llm.Completer type
type MockCompleter struct {
	mock.Mock
}

// Complete provides a mock function with given fields: ctx, prompt, temperature
func (_m *MockCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	ret := _m.Called(ctx, prompt, temperature)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string, float32) string); ok {
		r0 = rf(ctx, prompt, temperature)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(string)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, float32) error); ok {
		r1 = rf(ctx, prompt, temperature)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockCompleter creates a new instance of MockCompleter. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockCompleter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCompleter {
	m := &MockCompleter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ llm.Completer = (*MockCompleter)(nil)
