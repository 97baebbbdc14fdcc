// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"passport/internal/domain/entity"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/repository"
	"passport/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create persists a new user row and returns the store-assigned ID.
// A duplicate email is reported as repository.ErrEmailTaken, never a crash.
func (repo *userRepository) Create(ctx context.Context, email, passwordHash string) (int64, error) {
	userM := &model.UserModel{
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return 0, repository.ErrEmailTaken
		}

		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	return userM.ID, nil
}

// FindByID retrieves a user and its resolved role set in one logical read.
func (repo *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var userM model.UserModel

	err := repo.db.WithContext(ctx).
		Preload("Roles").
		First(&userM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a user and its resolved role set by email.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel

	err := repo.db.WithContext(ctx).
		Preload("Roles").
		First(&userM, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// List retrieves all users with resolved roles. An empty store yields an empty slice.
func (repo *userRepository) List(ctx context.Context) ([]*entity.User, error) {
	var userMs []model.UserModel

	err := repo.db.WithContext(ctx).
		Preload("Roles").
		Order("id").
		Find(&userMs).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list users")
	}

	users := make([]*entity.User, 0, len(userMs))
	for i := range userMs {
		users = append(users, toUserDomain(&userMs[i]))
	}

	return users, nil
}

// PasswordHashByID retrieves the stored password hash for a user. The hash
// never travels on the entity, only through this dedicated read.
func (repo *userRepository) PasswordHashByID(ctx context.Context, id int64) (string, error) {
	var userM model.UserModel

	err := repo.db.WithContext(ctx).
		Select("id", "password_hash").
		First(&userM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", repository.ErrUserNotFound
		}

		return "", domainerrors.NewDatabaseExecuteError(err, "failed to load password hash")
	}

	return userM.PasswordHash, nil
}

// Update patches only the supplied fields. The column set is fixed here; the
// update is never assembled from caller-controlled keys.
func (repo *userRepository) Update(ctx context.Context, id int64, fields repository.UpdateUserFields) error {
	if fields.IsEmpty() {
		return nil
	}

	columns := map[string]any{}
	if fields.Email != nil {
		columns["email"] = *fields.Email
	}
	if fields.PasswordHash != nil {
		columns["password_hash"] = *fields.PasswordHash
	}

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return repository.ErrEmailTaken
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// Delete removes the user row and its role memberships. Callers run it inside
// TransactionManager.Execute so both deletes commit or roll back together; the
// FK ON DELETE CASCADE backs the same invariant at the schema level.
func (repo *userRepository) Delete(ctx context.Context, id int64) error {
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", id).
		Delete(&model.UserRoleModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete user roles")
	}

	result := repo.db.WithContext(ctx).Delete(&model.UserModel{}, "id = ?", id)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// GrantRole adds a role membership. Re-granting a held role is a successful
// no-op via ON CONFLICT DO NOTHING on the composite primary key.
func (repo *userRepository) GrantRole(ctx context.Context, userID int64, role entity.Role) error {
	roleM := &model.UserRoleModel{
		UserID: userID,
		Role:   role.String(),
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(roleM).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to grant role")
	}

	return nil
}

// RevokeRole removes a role membership. Revoking an absent role is a successful no-op.
func (repo *userRepository) RevokeRole(ctx context.Context, userID int64, role entity.Role) error {
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, role.String()).
		Delete(&model.UserRoleModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to revoke role")
	}

	return nil
}

// ListRoles retrieves the role set of a user. Zero roles is a valid state and
// yields an empty slice.
func (repo *userRepository) ListRoles(ctx context.Context, userID int64) (entity.Roles, error) {
	var roleMs []model.UserRoleModel

	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, role").
		Find(&roleMs).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list roles")
	}

	roles := make(entity.Roles, 0, len(roleMs))
	for _, roleM := range roleMs {
		roles = append(roles, entity.Role(roleM.Role))
	}

	return roles, nil
}

// toUserDomain converts a GORM UserModel to a domain User entity.
// The password hash deliberately does not cross this boundary.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	roles := make(entity.Roles, 0, len(data.Roles))
	for _, roleM := range data.Roles {
		roles = append(roles, entity.Role(roleM.Role))
	}

	return &entity.User{
		ID:        data.ID,
		Email:     data.Email,
		Roles:     roles,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
