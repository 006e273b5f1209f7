// internal/app/features/users/handler.go
package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/system/auth"
	"github.com/nmercer/insighthub/internal/app/system/gates"
	"github.com/nmercer/insighthub/internal/app/system/timeouts"
	"github.com/nmercer/insighthub/internal/app/system/viewdata"
	"github.com/nmercer/insighthub/internal/domain/models"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

type Handler struct {
	Monitor *monitorapi.Client
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

/*─────────────────────────────────────────────────────────────────────────────*
| Directory                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type directoryPageData struct {
	viewdata.BaseVM
	Users      []monitorapi.User
	Search     string
	CanAdd     bool
	CanAddDept bool
	Notice     string
	ScopeTag   string
}

// ServeDirectory lists the monitored users the viewer may see. Department
// heads are pinned to their own department regardless of query params.
func (h *Handler) ServeDirectory(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}

	search := strings.TrimSpace(query.Get(r, "q"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list-users")
	defer cancel()

	users, err := h.Monitor.ListUsers(ctx, res.User.Token, monitorapi.UserQuery{
		Department: res.Scope,
		Search:     search,
	})
	if err != nil {
		if monitorapi.IsAuthError(err) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if monitorapi.IsNoData(err) {
			users = nil
		} else {
			h.ErrLog.LogUpstreamError(w, r, "user directory fetch failed", err,
				"Could not load the user directory. Please try again shortly.", "/dashboard")
			return
		}
	}

	templates.Render(w, r, "users_directory", directoryPageData{
		BaseVM:     viewdata.NewBaseVM(r, "Users", "/dashboard"),
		Users:      users,
		Search:     search,
		CanAdd:     res.Role == models.RoleCSuite || res.Role == models.RoleDepartmentHead,
		CanAddDept: res.Role == models.RoleCSuite,
		Notice:     noticeFor(query.Get(r, "notice")),
		ScopeTag:   res.Scope,
	})
}

func noticeFor(code string) string {
	switch code {
	case "created":
		return "User created."
	case "selected-cleared":
		return "Selection cleared."
	case "pick":
		return "Select a user to view their activity."
	default:
		return ""
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Selection                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSelect stores the posted user as the session's active selection. The
// record is re-fetched so the stored identity is the server's, not the form's.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/dashboard/users")
		return
	}

	username := strings.TrimSpace(r.FormValue("company_username"))
	if username == "" {
		h.ErrLog.LogBadRequest(w, r, "select without username", nil, "No user was chosen.", "/dashboard/users")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "select-user")
	defer cancel()

	user, err := h.Monitor.GetUser(ctx, res.User.Token, username)
	if err != nil {
		if monitorapi.IsAuthError(err) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.ErrLog.LogUpstreamError(w, r, "select-user fetch failed", err,
			"Could not look up that user. Please try again shortly.", "/dashboard/users")
		return
	}

	// department heads may only select within their department
	if res.Scope != "" && !strings.EqualFold(user.Department, res.Scope) {
		uierrors.RenderForbidden(w, r, "That user is outside your department.", "/dashboard/users")
		return
	}

	if err := auth.SetSelectedUser(w, r, user.Selected()); err != nil {
		h.ErrLog.LogServerError(w, r, "persist selection failed", err,
			"Could not store your selection.", "/dashboard/users")
		return
	}

	h.Log.Info("user selected",
		zap.String("selected", user.UniqueID()),
		zap.String("by", res.Name))

	dest := r.FormValue("return")
	if dest == "" {
		dest = "/dashboard/insights"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// HandleClearSelection drops the active selection.
func (h *Handler) HandleClearSelection(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	if err := auth.ClearSelectedUser(w, r); err != nil {
		h.ErrLog.LogServerError(w, r, "clear selection failed", err,
			"Could not clear your selection.", "/dashboard/users")
		return
	}
	http.Redirect(w, r, "/dashboard/users?notice=selected-cleared", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Create                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type createPageData struct {
	viewdata.BaseVM
	Error       string
	Form        map[string]string
	Departments []monitorapi.Department
	FixedDept   string
}

// ServeCreateForm shows the new-user form. C-suite may pick any department;
// heads create within their own.
func (h *Handler) ServeCreateForm(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}

	data := createPageData{
		BaseVM:    viewdata.NewBaseVM(r, "Add user", "/dashboard/users"),
		Form:      map[string]string{},
		FixedDept: res.Scope,
	}

	if res.Scope == "" {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list-departments")
		defer cancel()
		if deps, err := h.Monitor.ListDepartments(ctx, res.User.Token); err == nil {
			data.Departments = deps
		} else {
			h.Log.Warn("department list unavailable for create form", zap.Error(err))
		}
	}

	templates.Render(w, r, "users_create", data)
}

// HandleCreatePost creates a monitored-user record via the backend.
func (h *Handler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/dashboard/users/new")
		return
	}

	fields := map[string]any{
		"full_name":        strings.TrimSpace(r.FormValue("full_name")),
		"company_username": strings.TrimSpace(r.FormValue("company_username")),
		"contact_no":       strings.TrimSpace(r.FormValue("contact_no")),
		"role_key":         models.RoleDepartmentMember,
	}
	dept := strings.TrimSpace(r.FormValue("department"))
	if res.Scope != "" {
		dept = res.Scope
	}
	fields["department"] = dept

	if fields["full_name"] == "" || fields["company_username"] == "" || dept == "" {
		h.renderCreateError(w, r, res, "Name, username and department are required.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create-user")
	defer cancel()

	if err := h.Monitor.CreateUser(ctx, res.User.Token, fields); err != nil {
		var ae *monitorapi.APIError
		if errors.As(err, &ae) {
			h.renderCreateError(w, r, res, ae.Message)
			return
		}
		h.ErrLog.LogUpstreamError(w, r, "create user failed", err,
			"Could not create the user. Please try again shortly.", "/dashboard/users/new")
		return
	}

	h.Log.Info("monitored user created",
		zap.String("company_username", fields["company_username"].(string)),
		zap.String("department", dept))

	http.Redirect(w, r, "/dashboard/users?notice=created", http.StatusSeeOther)
}

func (h *Handler) renderCreateError(w http.ResponseWriter, r *http.Request, res gates.Result, msg string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	form := map[string]string{}
	for _, k := range []string{"full_name", "company_username", "contact_no", "department"} {
		form[k] = r.FormValue(k)
	}
	templates.Render(w, r, "users_create", createPageData{
		BaseVM:    viewdata.NewBaseVM(r, "Add user", "/dashboard/users"),
		Error:     msg,
		Form:      form,
		FixedDept: res.Scope,
	})
}
