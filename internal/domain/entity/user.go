// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// User is the core entity in the system, representing a single account.
// The password hash never leaves the persistence/hasher boundary, so it is
// deliberately not a field here.
type User struct {
	ID        int64     // Store-assigned identifier, immutable once created.
	Email     string    // The login identifier; unique, compared case-sensitively as stored.
	Roles     Roles     // The resolved set of role memberships for this account.
	CreatedAt time.Time // Timestamp of when this account was created.
	UpdatedAt time.Time // Timestamp of the last modification to this account.
}

// HasRole reports whether the user currently holds the given role.
func (u *User) HasRole(role Role) bool {
	return u.Roles.Contains(role)
}
