package repository

import (
	"context"

	domainrepo "passport/internal/domain/repository"

	"github.com/stretchr/testify/mock"
)

// MockTransactionManager is a testify mock of repository.TransactionManager.
type MockTransactionManager struct {
	mock.Mock
}

// NewMockTransactionManager creates a mock with cleanup-time expectation checks.
func NewMockTransactionManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransactionManager {
	m := &MockTransactionManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTransactionManager) Execute(ctx context.Context, fn func(domainrepo.RepositoryFactory) error) error {
	args := m.Called(ctx, fn)

	return args.Error(0)
}

// PassthroughTransactionManager runs the callback immediately against a fixed
// factory, with no transactional behavior. It keeps usecase tests focused on
// orchestration instead of mock-callback plumbing.
type PassthroughTransactionManager struct {
	Factory domainrepo.RepositoryFactory
}

func (m *PassthroughTransactionManager) Execute(_ context.Context, fn func(domainrepo.RepositoryFactory) error) error {
	return fn(m.Factory)
}

// MockRepositoryFactory is a testify mock of repository.RepositoryFactory.
type MockRepositoryFactory struct {
	mock.Mock
}

// NewMockRepositoryFactory creates a mock with cleanup-time expectation checks.
func NewMockRepositoryFactory(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRepositoryFactory {
	m := &MockRepositoryFactory{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockRepositoryFactory) UserRepo() domainrepo.UserRepository {
	args := m.Called()

	return args.Get(0).(domainrepo.UserRepository)
}

// StaticRepositoryFactory returns the same repository for every call; handy
// together with PassthroughTransactionManager.
type StaticRepositoryFactory struct {
	Repo domainrepo.UserRepository
}

func (f *StaticRepositoryFactory) UserRepo() domainrepo.UserRepository {
	return f.Repo
}
