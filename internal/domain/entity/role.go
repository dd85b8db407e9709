// Package entity contains the core business objects of the project.
package entity

import "strings"

// Role is the platform persona chosen at signup.
type Role string

const (
	RoleInnovator Role = "innovator"
	RoleDeveloper Role = "developer"
	RoleInvestor  Role = "investor"
	RoleAdmin     Role = "admin"
)

// DefaultRole is assigned when signup omits a role.
const DefaultRole = RoleDeveloper

func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is one of the known personas.
func (r Role) IsValid() bool {
	switch r {
	case RoleInnovator, RoleDeveloper, RoleInvestor, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole lowercases s and falls back to DefaultRole when it is blank.
// The second result is false for an unknown role.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultRole, true
	}

	role := Role(s)

	return role, role.IsValid()
}
