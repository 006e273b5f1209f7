// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and authorization, rendering appropriate error
// pages or redirects when checks fail.
//
// Route-level middleware (auth.RequireSignedIn, auth.RequireRole) handles
// coarse-grained access in routes.go files. Gates are for handlers that need
// the user context back, or checks the route group does not express: the
// console-access rule and the selected-user requirement.
package gates

import (
	"net/http"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/system/auth"
	"github.com/nmercer/insighthub/internal/app/system/authz"
	"github.com/nmercer/insighthub/internal/domain/models"
)

// Result contains the result of an authorization gate check.
type Result struct {
	Role  string
	Name  string
	User  *auth.SessionUser
	Scope string
	OK    bool
}

// RequireAuth ensures a user is authenticated.
// If not authenticated, it renders an unauthorized error and returns OK=false.
// The loginURL parameter specifies where to redirect for login.
func RequireAuth(w http.ResponseWriter, r *http.Request, loginURL string) Result {
	role, name, user, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, loginURL)
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, User: user, Scope: authz.DataScope(r), OK: true}
}

// RequireDashboard ensures the user is signed in with a role that has console
// access. Department members (and unknown roles) are sent back to the login
// page rather than a forbidden page; the console simply is not theirs.
func RequireDashboard(w http.ResponseWriter, r *http.Request) Result {
	role, name, user, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return Result{OK: false}
	}
	if !models.HasDashboardAccess(role) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, User: user, Scope: authz.DataScope(r), OK: true}
}

// RequireCSuite ensures the user is signed in as a C-suite account.
// Department heads get a forbidden page with a way back.
func RequireCSuite(w http.ResponseWriter, r *http.Request, forbiddenMsg, fallbackURL string) Result {
	res := RequireDashboard(w, r)
	if !res.OK {
		return res
	}
	if res.Role != models.RoleCSuite {
		uierrors.RenderForbidden(w, r, forbiddenMsg, fallbackURL)
		return Result{OK: false}
	}
	return res
}

// RequireSelectedUser ensures the session has a user selected. Pages under
// the selection-scoped prefix are meaningless without one, so the caller is
// redirected to the user directory to pick.
func RequireSelectedUser(w http.ResponseWriter, r *http.Request) (*models.SelectedUser, bool) {
	sel := authz.SelectedUser(r)
	if sel == nil {
		http.Redirect(w, r, "/dashboard/users?notice=pick", http.StatusSeeOther)
		return nil, false
	}
	return sel, true
}
