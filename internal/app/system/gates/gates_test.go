package gates_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nmercer/insighthub/internal/app/system/auth"
	"github.com/nmercer/insighthub/internal/app/system/gates"
	"github.com/nmercer/insighthub/internal/domain/models"
	"github.com/nmercer/insighthub/internal/testutil"
)

// Helper to create a request with user context
func withTestUser(r *http.Request, role string) *http.Request {
	user := &auth.SessionUser{
		Token:     "tok-test",
		SessionID: "sid-test",
		Profile: &models.UserProfile{
			RoleKey:         role,
			FullName:        "Test User",
			CompanyUsername: "test.user",
			Department:      "Engineering",
		},
	}
	return auth.WithUser(r, user)
}

func TestRequireAuth_Authenticated(t *testing.T) {
	req := httptest.NewRequest("GET", "/dashboard", nil)
	req = withTestUser(req, models.RoleCSuite)
	rec := httptest.NewRecorder()

	result := gates.RequireAuth(rec, req, "/login")

	if !result.OK {
		t.Error("expected OK to be true for authenticated user")
	}
	if result.Role != models.RoleCSuite {
		t.Errorf("Role: got %q, want %q", result.Role, models.RoleCSuite)
	}
	if result.Name != "Test User" {
		t.Errorf("Name: got %q, want %q", result.Name, "Test User")
	}
	if result.Scope != "" {
		t.Errorf("Scope: got %q, want organization-wide for c-suite", result.Scope)
	}
}

func TestRequireAuth_NotAuthenticated(t *testing.T) {
	testutil.BootTemplates(t)
	req := httptest.NewRequest("GET", "/dashboard", nil)
	rec := httptest.NewRecorder()

	result := gates.RequireAuth(rec, req, "/login")

	if result.OK {
		t.Error("expected OK to be false for unauthenticated user")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireDashboard_DepartmentHead(t *testing.T) {
	req := httptest.NewRequest("GET", "/dashboard", nil)
	req = withTestUser(req, models.RoleDepartmentHead)
	rec := httptest.NewRecorder()

	result := gates.RequireDashboard(rec, req)

	if !result.OK {
		t.Fatal("expected OK for department head")
	}
	if result.Scope != "Engineering" {
		t.Errorf("Scope: got %q, want %q", result.Scope, "Engineering")
	}
}

func TestRequireDashboard_MemberRedirectedToLogin(t *testing.T) {
	req := httptest.NewRequest("GET", "/dashboard", nil)
	req = withTestUser(req, models.RoleDepartmentMember)
	rec := httptest.NewRecorder()

	result := gates.RequireDashboard(rec, req)

	if result.OK {
		t.Error("expected OK to be false for department member")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location: got %q, want /login", loc)
	}
}

func TestRequireDashboard_UnknownRoleRedirectedToLogin(t *testing.T) {
	req := httptest.NewRequest("GET", "/dashboard", nil)
	req = withTestUser(req, "MYSTERY_ROLE")
	rec := httptest.NewRecorder()

	result := gates.RequireDashboard(rec, req)

	if result.OK {
		t.Error("expected OK to be false for unknown role")
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location: got %q, want /login", loc)
	}
}

func TestRequireCSuite_AsCSuite(t *testing.T) {
	req := httptest.NewRequest("GET", "/dashboard/departments", nil)
	req = withTestUser(req, models.RoleCSuite)
	rec := httptest.NewRecorder()

	result := gates.RequireCSuite(rec, req, "C-suite only", "/dashboard")

	if !result.OK {
		t.Error("expected OK to be true for c-suite user")
	}
}

func TestRequireCSuite_AsHead(t *testing.T) {
	testutil.BootTemplates(t)
	req := httptest.NewRequest("GET", "/dashboard/departments", nil)
	req = withTestUser(req, models.RoleDepartmentHead)
	rec := httptest.NewRecorder()

	result := gates.RequireCSuite(rec, req, "C-suite only", "/dashboard")

	if result.OK {
		t.Error("expected OK to be false for department head")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequireSelectedUser_NoneRedirectsToDirectory(t *testing.T) {
	req := httptest.NewRequest("GET", "/dashboard/insights", nil)
	req = withTestUser(req, models.RoleCSuite)
	rec := httptest.NewRecorder()

	sel, ok := gates.RequireSelectedUser(rec, req)

	if ok || sel != nil {
		t.Error("expected no selection to fail the gate")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard/users?notice=pick" {
		t.Errorf("Location: got %q, want /dashboard/users?notice=pick", loc)
	}
}

func TestRequireSelectedUser_Present(t *testing.T) {
	req := httptest.NewRequest("GET", "/dashboard/insights", nil)
	user := &auth.SessionUser{
		Token:    "tok",
		Profile:  &models.UserProfile{RoleKey: models.RoleCSuite},
		Selected: &models.SelectedUser{ID: "mac-1", CompanyUsername: "jdoe"},
	}
	req = auth.WithUser(req, user)
	rec := httptest.NewRecorder()

	sel, ok := gates.RequireSelectedUser(rec, req)

	if !ok || sel == nil {
		t.Fatal("expected gate to pass with a selection")
	}
	if sel.ID != "mac-1" {
		t.Errorf("selection id: got %q", sel.ID)
	}
}
