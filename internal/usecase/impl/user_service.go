// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "passport/internal/delivery/context"
	"passport/internal/domain/entity"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/repository"
	"passport/internal/domain/service"
	"passport/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// UserServiceParams holds dependencies for userService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the complete registration process. The user row and
// its default "user" role are created in one transaction, so registration is
// all-or-nothing: there is no state where the account exists without a role.
func (srv *userService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	if input.Email == "" || input.Password == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "email and password are required")
	}

	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	// bcrypt is CPU-bound; hash outside the transaction.
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, "failed to hash password during registration")
	}

	var registeredUser *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		userID, err := userRepo.Create(ctx, input.Email, hashedPassword)
		if err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				return errors.Wrap(domainerrors.ErrEmailConflict, "email already registered")
			}

			return errors.Wrap(err, "failed to create user during registration")
		}

		if err := userRepo.GrantRole(ctx, userID, entity.RoleUser); err != nil {
			return errors.Wrap(err, "failed to grant default role during registration")
		}

		createdUser, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to load user after registration")
		}
		registeredUser = createdUser

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Int64("userID", registeredUser.ID))

	return &usecase.RegisterOutput{User: registeredUser}, nil
}

// Login verifies credentials and issues a token carrying the current role set.
// Unknown email and wrong password produce the same error so callers cannot
// enumerate accounts.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	loggedInUser, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to find user during login")
	}

	storedHash, err := srv.userRepo.PasswordHashByID(ctx, loggedInUser.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load password hash during login")
	}

	if !srv.hasher.Check(input.Password, storedHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	token, err := srv.tokenService.Issue(loggedInUser.ID, loggedInUser.Email, loggedInUser.Roles.ToStrings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token during login")
	}

	srv.log(ctx).Debug("User logged in", slog.Int64("userID", loggedInUser.ID))

	return &usecase.LoginOutput{
		Token: token,
		User:  loggedInUser,
	}, nil
}

// GetUser retrieves a single account with its resolved role set.
func (srv *userService) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return user, nil
}

// ListUsers retrieves all accounts with resolved roles.
func (srv *userService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := srv.userRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	return users, nil
}

// UpdateUser patches the supplied fields of an account. Email-only changes
// pass through directly; any password change first verifies the current
// password.
func (srv *userService) UpdateUser(ctx context.Context, input *usecase.UpdateUserInput) (*entity.User, error) {
	if input.Email == nil && input.NewPassword == nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "no fields to update")
	}

	fields := repository.UpdateUserFields{Email: input.Email}

	if input.NewPassword != nil {
		if err := srv.verifyCurrentPassword(ctx, input.UserID, input.OldPassword); err != nil {
			return nil, err
		}

		hashedPassword, err := srv.hasher.Hash(*input.NewPassword)
		if err != nil {
			return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, "failed to hash new password")
		}
		fields.PasswordHash = &hashedPassword
	}

	var updatedUser *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		if err := userRepo.Update(ctx, input.UserID, fields); err != nil {
			switch {
			case errors.Is(err, repository.ErrUserNotFound):
				return errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
			case errors.Is(err, repository.ErrEmailTaken):
				return errors.Wrap(domainerrors.ErrEmailConflict, "email already in use")
			default:
				return errors.Wrap(err, "failed to update user")
			}
		}

		user, err := userRepo.FindByID(ctx, input.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to load user after update")
		}
		updatedUser = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("User update failed", slog.Int64("userID", input.UserID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("User updated", slog.Int64("userID", input.UserID))

	return updatedUser, nil
}

func (srv *userService) verifyCurrentPassword(ctx context.Context, userID int64, oldPassword string) error {
	if oldPassword == "" {
		return errors.Wrap(domainerrors.ErrPasswordRequired, "current password missing")
	}

	storedHash, err := srv.userRepo.PasswordHashByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
		}

		return errors.Wrap(err, "failed to load password hash for verification")
	}

	if !srv.hasher.Check(oldPassword, storedHash) {
		srv.log(ctx).Warn("Current password verification failed", slog.Int64("userID", userID))

		return errors.Wrap(domainerrors.ErrPasswordRequired, "current password mismatch")
	}

	return nil
}

// DeleteUser removes the account and all of its role memberships atomically.
func (srv *userService) DeleteUser(ctx context.Context, id int64) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
			}

			return errors.Wrap(err, "failed to delete user")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("User deletion failed", slog.Int64("userID", id), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("User deleted", slog.Int64("userID", id))

	return nil
}

// GrantRole adds a role to an account. The store operation is idempotent; the
// response carries a fresh token with the updated role set so the caller's
// session reflects the change immediately.
func (srv *userService) GrantRole(ctx context.Context, userID int64, role entity.Role) (*usecase.RoleChangeOutput, error) {
	return srv.changeRole(ctx, userID, role, func(userRepo repository.UserRepository) error {
		return userRepo.GrantRole(ctx, userID, role)
	})
}

// RevokeRole removes a role from an account. Revoking a role the account does
// not hold is a successful no-op; a fresh token is issued either way.
func (srv *userService) RevokeRole(ctx context.Context, userID int64, role entity.Role) (*usecase.RoleChangeOutput, error) {
	return srv.changeRole(ctx, userID, role, func(userRepo repository.UserRepository) error {
		return userRepo.RevokeRole(ctx, userID, role)
	})
}

func (srv *userService) changeRole(
	ctx context.Context,
	userID int64,
	role entity.Role,
	apply func(repository.UserRepository) error,
) (*usecase.RoleChangeOutput, error) {
	if role == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "role is required")
	}

	var changedUser *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		// The existence check runs inside the transaction so the role write
		// can never land on a user deleted concurrently.
		if _, err := userRepo.FindByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
			}

			return errors.Wrap(err, "failed to find user for role change")
		}

		if err := apply(userRepo); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
			}

			return errors.Wrap(err, "failed to apply role change")
		}

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to load user after role change")
		}
		changedUser = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Role change failed",
			slog.Int64("userID", userID), slog.String("role", role.String()), slog.Any("error", err))

		return nil, err
	}

	token, err := srv.tokenService.Issue(changedUser.ID, changedUser.Email, changedUser.Roles.ToStrings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token after role change")
	}

	srv.log(ctx).Info("Role change applied",
		slog.Int64("userID", userID), slog.String("role", role.String()))

	return &usecase.RoleChangeOutput{
		User:  changedUser,
		Token: token,
	}, nil
}
