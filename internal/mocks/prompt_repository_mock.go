package mocks

import (
	"context"

	"prompt-server/internal/interfaces"
	"prompt-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockPromptRepository is a mock type for the PromptRepository type
type MockPromptRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, promptID, template
func (_m *MockPromptRepository) Create(ctx context.Context, promptID int, template string) (bool, error) {
	ret := _m.Called(ctx, promptID, template)
	return ret.Bool(0), ret.Error(1)
}

// ListVersions provides a mock function with given fields: ctx, promptID
func (_m *MockPromptRepository) ListVersions(ctx context.Context, promptID int) interfaces.VersionIterator {
	ret := _m.Called(ctx, promptID)
	if ret.Get(0) == nil {
		return nil
	}
	return ret.Get(0).(interfaces.VersionIterator)
}

// AppendVersion provides a mock function with given fields: ctx, promptID, template
func (_m *MockPromptRepository) AppendVersion(ctx context.Context, promptID int, template string) (models.PromptVersion, error) {
	ret := _m.Called(ctx, promptID, template)

	var r0 models.PromptVersion
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(models.PromptVersion)
	}
	return r0, ret.Error(1)
}

// GetVersion provides a mock function with given fields: ctx, promptID, version
func (_m *MockPromptRepository) GetVersion(ctx context.Context, promptID int, version int) (string, bool, error) {
	ret := _m.Called(ctx, promptID, version)
	return ret.String(0), ret.Bool(1), ret.Error(2)
}

// LatestVersion provides a mock function with given fields: ctx, promptID
func (_m *MockPromptRepository) LatestVersion(ctx context.Context, promptID int) (models.PromptVersion, bool, error) {
	ret := _m.Called(ctx, promptID)

	var r0 models.PromptVersion
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(models.PromptVersion)
	}
	return r0, ret.Bool(1), ret.Error(2)
}

// Exists provides a mock function with given fields: ctx, promptID
func (_m *MockPromptRepository) Exists(ctx context.Context, promptID int) (bool, error) {
	ret := _m.Called(ctx, promptID)
	return ret.Bool(0), ret.Error(1)
}

// NewMockPromptRepository creates a new instance of MockPromptRepository.
func NewMockPromptRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPromptRepository {
	m := &MockPromptRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ interfaces.PromptRepository = (*MockPromptRepository)(nil)
