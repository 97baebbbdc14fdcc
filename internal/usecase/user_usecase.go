// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"passport/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateUserInput defines a partial account update. Nil fields are left
// untouched. Any password change must carry the current password for
// verification; email-only changes do not.
type UpdateUserInput struct {
	UserID      int64
	Email       *string
	NewPassword *string
	OldPassword string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account.
type RegisterOutput struct {
	User *entity.User
}

// LoginOutput returns the issued access token after a successful login.
type LoginOutput struct {
	Token string
	User  *entity.User
}

// RoleChangeOutput returns the updated account together with a freshly issued
// token reflecting the new role set, so the caller's session stays consistent
// immediately instead of waiting for the old token to expire.
type RoleChangeOutput struct {
	User  *entity.User
	Token string
}

// UserUsecase defines the interface for account-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	GetUser(ctx context.Context, id int64) (*entity.User, error)
	ListUsers(ctx context.Context) ([]*entity.User, error)
	UpdateUser(ctx context.Context, input *UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, id int64) error
	GrantRole(ctx context.Context, userID int64, role entity.Role) (*RoleChangeOutput, error)
	RevokeRole(ctx context.Context, userID int64, role entity.Role) (*RoleChangeOutput, error)
}
