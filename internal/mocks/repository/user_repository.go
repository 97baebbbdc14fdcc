// Package repository contains handwritten testify mocks for the domain
// repository interfaces.
package repository

import (
	"context"

	"passport/internal/domain/entity"
	domainrepo "passport/internal/domain/repository"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a testify mock of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a mock with cleanup-time expectation checks.
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockUserRepository) Create(ctx context.Context, email, passwordHash string) (int64, error) {
	args := m.Called(ctx, email, passwordHash)

	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *MockUserRepository) PasswordHashByID(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)

	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id int64, fields domainrepo.UpdateUserFields) error {
	args := m.Called(ctx, id, fields)

	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockUserRepository) GrantRole(ctx context.Context, userID int64, role entity.Role) error {
	args := m.Called(ctx, userID, role)

	return args.Error(0)
}

func (m *MockUserRepository) RevokeRole(ctx context.Context, userID int64, role entity.Role) error {
	args := m.Called(ctx, userID, role)

	return args.Error(0)
}

func (m *MockUserRepository) ListRoles(ctx context.Context, userID int64) (entity.Roles, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(entity.Roles), args.Error(1)
}
