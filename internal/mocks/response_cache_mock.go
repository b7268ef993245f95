package mocks

import (
	"context"

	"prompt-server/internal/interfaces"
	"prompt-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockResponseCache is a mock type for the ResponseCache type
type MockResponseCache struct {
	mock.Mock
}

// Get provides a mock function with given fields: ctx, key
func (_m *MockResponseCache) Get(ctx context.Context, key string) (*models.ResponseLLM, bool, error) {
	ret := _m.Called(ctx, key)

	var r0 *models.ResponseLLM
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ResponseLLM)
	}
	return r0, ret.Bool(1), ret.Error(2)
}

// Put provides a mock function with given fields: ctx, key, resp
func (_m *MockResponseCache) Put(ctx context.Context, key string, resp *models.ResponseLLM) error {
	ret := _m.Called(ctx, key, resp)
	return ret.Error(0)
}

// NewMockResponseCache creates a new instance of MockResponseCache.
func NewMockResponseCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockResponseCache {
	m := &MockResponseCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ interfaces.ResponseCache = (*MockResponseCache)(nil)
