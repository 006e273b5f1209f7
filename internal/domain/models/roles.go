// internal/domain/models/roles.go
package models

import "strings"

// Role keys as issued by the monitoring API. Comparison is always done on the
// uppercased form; the API has historically returned mixed casing.
const (
	RoleCSuite           = "C_SUITE"
	RoleDepartmentHead   = "DEPARTMENT_HEAD"
	RoleDepartmentMember = "DEPARTMENT_MEMBER"
)

// NormalizeRole uppercases and trims a role key for comparison.
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

// RoleLabel returns the human-readable name for a role key.
func RoleLabel(role string) string {
	switch NormalizeRole(role) {
	case RoleCSuite:
		return "C-Suite"
	case RoleDepartmentHead:
		return "Department Head"
	case RoleDepartmentMember:
		return "Department Member"
	case "":
		return "(unknown)"
	default:
		return NormalizeRole(role)
	}
}

// HasDashboardAccess reports whether a role is entitled to the web console.
// Department members are captured by the desktop agent but have no dashboard
// entitlement.
func HasDashboardAccess(role string) bool {
	return NormalizeRole(role) != RoleDepartmentMember && NormalizeRole(role) != ""
}
