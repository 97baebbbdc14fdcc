// Package model holds the GORM persistence models. They mirror table layout
// and stay separate from the pure domain entities.
package model

import "time"

// UserModel mirrors the 'users' table. IDs are store-assigned bigserial values.
type UserModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Email        string    `gorm:"type:varchar(255);unique;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Roles []UserRoleModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// UserRoleModel mirrors the 'user_roles' table. The composite primary key
// enforces that a (user_id, role) pair exists at most once.
type UserRoleModel struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false"`
	Role      string    `gorm:"type:varchar(100);primaryKey"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserRoleModel) TableName() string {
	return "user_roles"
}
