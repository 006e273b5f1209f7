package testutil

import (
	"net/http"

	"github.com/nmercer/insighthub/internal/app/system/auth"
	"github.com/nmercer/insighthub/internal/domain/models"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	Token      string
	SessionID  string
	Role       string
	Name       string
	Username   string
	Department string
	Selected   *models.SelectedUser
}

// CSuiteUser returns a TestUser with organization-wide access.
func CSuiteUser() TestUser {
	return TestUser{
		Token:     "tok-csuite",
		SessionID: "sid-csuite",
		Role:      models.RoleCSuite,
		Name:      "Casey Suite",
		Username:  "casey.suite",
	}
}

// HeadUser returns a TestUser heading the given department.
func HeadUser(department string) TestUser {
	return TestUser{
		Token:      "tok-head",
		SessionID:  "sid-head",
		Role:       models.RoleDepartmentHead,
		Name:       "Harper Head",
		Username:   "harper.head",
		Department: department,
	}
}

// MemberUser returns a TestUser with the desktop-agent role.
func MemberUser(department string) TestUser {
	return TestUser{
		Token:      "tok-member",
		SessionID:  "sid-member",
		Role:       models.RoleDepartmentMember,
		Name:       "Morgan Member",
		Username:   "morgan.member",
		Department: department,
	}
}

// SelectedUser builds a session selection for tests.
func SelectedUser(id, username, fullName string) *models.SelectedUser {
	return &models.SelectedUser{
		ID:              id,
		CompanyUsername: username,
		FullName:        fullName,
	}
}

// WithTestUser injects the test user into the request context, simulating
// what LoadSessionUser does for a signed-in request.
func WithTestUser(r *http.Request, u TestUser) *http.Request {
	return auth.WithUser(r, &auth.SessionUser{
		Token:     u.Token,
		SessionID: u.SessionID,
		Profile: &models.UserProfile{
			RoleKey:         u.Role,
			FullName:        u.Name,
			CompanyUsername: u.Username,
			Department:      u.Department,
		},
		Selected: u.Selected,
	})
}
