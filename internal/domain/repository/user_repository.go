// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"passport/internal/domain/entity"
)

// Domain-specific persistence errors. The application layer handles these
// outcomes without depending on database-specific errors.
var (
	// ErrUserNotFound is returned when a user row does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when an insert or update would violate the
	// unique email constraint.
	ErrEmailTaken = errors.New("email already taken")
)

// UpdateUserFields enumerates the fields a user update may patch. Only non-nil
// fields are written. The set is fixed on purpose: updates are never built from
// caller-supplied key/value maps.
type UpdateUserFields struct {
	Email        *string
	PasswordHash *string
}

// IsEmpty reports whether the update would patch nothing.
func (f UpdateUserFields) IsEmpty() bool {
	return f.Email == nil && f.PasswordHash == nil
}

// UserRepository defines the standard operations for user and role persistence.
// The application layer depends on this interface, not the concrete implementation.
type UserRepository interface {
	// Create persists a new user with its password hash and returns the
	// store-assigned ID. Returns ErrEmailTaken when the email already exists.
	Create(ctx context.Context, email, passwordHash string) (int64, error)

	// FindByID retrieves a user and its resolved role set by ID.
	FindByID(ctx context.Context, id int64) (*entity.User, error)

	// FindByEmail retrieves a user and its resolved role set by email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// List retrieves all users with resolved roles. An empty store yields an
	// empty slice, not an error.
	List(ctx context.Context) ([]*entity.User, error)

	// PasswordHashByID retrieves the stored password hash for a user.
	PasswordHashByID(ctx context.Context, id int64) (string, error)

	// Update patches the supplied fields of an existing user. Returns
	// ErrUserNotFound when the row does not exist and ErrEmailTaken when the
	// new email is owned by another user.
	Update(ctx context.Context, id int64, fields UpdateUserFields) error

	// Delete removes a user and all of its role memberships as one atomic
	// unit. Partial deletion is a correctness bug, never an outcome.
	Delete(ctx context.Context, id int64) error

	// GrantRole adds a role membership. Granting a role the user already
	// holds is a successful no-op.
	GrantRole(ctx context.Context, userID int64, role entity.Role) error

	// RevokeRole removes a role membership. Revoking an absent role is a
	// successful no-op.
	RevokeRole(ctx context.Context, userID int64, role entity.Role) error

	// ListRoles retrieves the role set of a user. Zero roles yields an empty
	// slice, not an error.
	ListRoles(ctx context.Context, userID int64) (entity.Roles, error)
}
