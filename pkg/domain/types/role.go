package types

import "strings"

// Role represents an actor role. Write-permission checks happen upstream
// of this core; the role is carried so the audit trail records it.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleViewer     Role = "viewer"
)

var roleAliases = map[string]Role{
	"admin":        RoleAdmin,
	"technician":   RoleTechnician,
	"tecnico":      RoleTechnician,
	"user":         RoleTechnician,
	"viewer":       RoleViewer,
	"visualizador": RoleViewer,
}

// NormalizeRole folds role aliases into the canonical role, defaulting to
// RoleTechnician for empty input.
func NormalizeRole(value string) Role {
	raw := strings.ToLower(strings.TrimSpace(value))
	if raw == "" {
		return RoleTechnician
	}
	if role, ok := roleAliases[raw]; ok {
		return role
	}
	return Role(raw)
}

// CanWrite reports whether the role may perform mutations
func (r Role) CanWrite() bool {
	switch r {
	case RoleAdmin, RoleTechnician:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the role is the admin role
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}
