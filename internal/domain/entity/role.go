// Package entity contains the core business objects of the project.
package entity

import "slices"

// Role is a free-form string tag granting access to role-gated operations.
// "user" and "admin" are the roles the service itself assigns or checks;
// deployments may grant arbitrary additional tags.
type Role string

const (
	// RoleUser is granted to every account at registration.
	RoleUser Role = "user"
	// RoleAdmin gates account administration endpoints.
	RoleAdmin Role = "admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// Roles is a slice of Role for convenience.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

// ToStrings converts Roles to []string for JWT compatibility.
func (rs Roles) ToStrings() []string {
	result := make([]string, len(rs))
	for i, r := range rs {
		result[i] = r.String()
	}

	return result
}

// RolesFromStrings converts []string to Roles.
func RolesFromStrings(ss []string) Roles {
	result := make(Roles, 0, len(ss))
	for _, s := range ss {
		result = append(result, Role(s))
	}

	return result
}
