// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/nmercer/insighthub/internal/app/system/auth"
	"github.com/nmercer/insighthub/internal/domain/models"
)

// UserCtx returns the user's role key (normalized), display name, the full
// session user, and a found flag. ok=true means a signed-in user with a
// resolved profile.
func UserCtx(r *http.Request) (role string, name string, user *auth.SessionUser, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok || u.Profile == nil {
		return "", "", nil, false
	}
	return models.NormalizeRole(u.Role()), u.Profile.DisplayName(), u, true
}

// IsCSuite reports whether the current request's user is a C-suite account.
func IsCSuite(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleCSuite
}

// IsDepartmentHead reports whether the current request's user heads a department.
func IsDepartmentHead(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleDepartmentHead
}

// CanViewDashboard reports whether the current user's role grants console
// access at all. Department members use the desktop agent, not the console.
func CanViewDashboard(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && models.HasDashboardAccess(role)
}

// DataScope returns the department filter every data query must carry for
// this user. C-suite sees the whole organization (empty scope); department
// roles are pinned to their own department.
func DataScope(r *http.Request) string {
	role, _, user, ok := UserCtx(r)
	if !ok || role == models.RoleCSuite {
		return ""
	}
	return user.Profile.Department
}

// SelectedUser returns the session's user selection, if any.
func SelectedUser(r *http.Request) *models.SelectedUser {
	_, _, user, ok := UserCtx(r)
	if !ok {
		return nil
	}
	return user.Selected
}
