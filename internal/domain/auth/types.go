package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
)

// Role represents a user's role in the campus community.
// Keep string form for easy persistence and wire compatibility with the API.
type Role string

const (
	RoleEstudiante Role = "estudiante"
	RoleStaff      Role = "staff"
	RoleAutoridad  Role = "autoridad"
)

// DefaultRole is assigned when the API omits a role.
const DefaultRole = RoleEstudiante

// Roles returns all valid roles in display order.
func Roles() []Role {
	return []Role{RoleEstudiante, RoleStaff, RoleAutoridad}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEstudiante, RoleStaff, RoleAutoridad:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the role may access administrative views.
func (r Role) IsAdmin() bool { return r == RoleAutoridad }

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q (valid options: estudiante, staff, autoridad)", s)
	}
	return r, nil
}

// User is the authenticated identity as seen by the client.
// Name is a display name; Email doubles as the login identifier (tenant_id).
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session pairs a user with its bearer token. A session is only usable
// when both halves are present.
type Session struct {
	User  User
	Token string
}
