// Package usecase contains handwritten testify mocks for the usecase
// interfaces consumed by the delivery layer.
package usecase

import (
	"context"

	"passport/internal/domain/entity"
	appusecase "passport/internal/usecase"

	"github.com/stretchr/testify/mock"
)

// MockUserUsecase is a testify mock of usecase.UserUsecase.
type MockUserUsecase struct {
	mock.Mock
}

// NewMockUserUsecase creates a mock with cleanup-time expectation checks.
func NewMockUserUsecase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserUsecase {
	m := &MockUserUsecase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockUserUsecase) Register(ctx context.Context, input *appusecase.RegisterInput) (*appusecase.RegisterOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*appusecase.RegisterOutput), args.Error(1)
}

func (m *MockUserUsecase) Login(ctx context.Context, input *appusecase.LoginInput) (*appusecase.LoginOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*appusecase.LoginOutput), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserUsecase) ListUsers(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *MockUserUsecase) UpdateUser(ctx context.Context, input *appusecase.UpdateUserInput) (*entity.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserUsecase) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockUserUsecase) GrantRole(ctx context.Context, userID int64, role entity.Role) (*appusecase.RoleChangeOutput, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*appusecase.RoleChangeOutput), args.Error(1)
}

func (m *MockUserUsecase) RevokeRole(ctx context.Context, userID int64, role entity.Role) (*appusecase.RoleChangeOutput, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*appusecase.RoleChangeOutput), args.Error(1)
}
