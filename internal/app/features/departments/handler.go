// internal/app/features/departments/handler.go
package departments

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/system/gates"
	"github.com/nmercer/insighthub/internal/app/system/timeouts"
	"github.com/nmercer/insighthub/internal/app/system/viewdata"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

// Departments are organization-wide structure, so the whole feature is
// c-suite only.
type Handler struct {
	Monitor *monitorapi.Client
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

type departmentsPageData struct {
	viewdata.BaseVM
	Departments []monitorapi.Department
	Error       string
	Name        string
}

// ServeList renders the department list with the inline create form.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireCSuite(w, r, "Only C-suite accounts manage departments.", "/dashboard")
	if !res.OK {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list-departments")
	defer cancel()

	deps, err := h.Monitor.ListDepartments(ctx, res.User.Token)
	if err != nil && !monitorapi.IsNoData(err) {
		if monitorapi.IsAuthError(err) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.ErrLog.LogUpstreamError(w, r, "department list fetch failed", err,
			"Could not load departments.", "/dashboard")
		return
	}

	templates.Render(w, r, "departments", departmentsPageData{
		BaseVM:      viewdata.NewBaseVM(r, "Departments", "/dashboard"),
		Departments: deps,
	})
}

// HandleCreatePost creates a department and re-renders the list.
func (h *Handler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireCSuite(w, r, "Only C-suite accounts manage departments.", "/dashboard")
	if !res.OK {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/dashboard/departments")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		h.renderError(w, r, res, "", "Department name is required.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create-department")
	defer cancel()

	if err := h.Monitor.CreateDepartment(ctx, res.User.Token, name); err != nil {
		var ae *monitorapi.APIError
		if errors.As(err, &ae) {
			h.renderError(w, r, res, name, ae.Message)
			return
		}
		h.ErrLog.LogUpstreamError(w, r, "create department failed", err,
			"Could not create the department.", "/dashboard/departments")
		return
	}

	h.Log.Info("department created",
		zap.String("name", name),
		zap.String("by", res.Name))

	http.Redirect(w, r, "/dashboard/departments", http.StatusSeeOther)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, res gates.Result, name, msg string) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list-departments")
	defer cancel()

	deps, _ := h.Monitor.ListDepartments(ctx, res.User.Token)

	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "departments", departmentsPageData{
		BaseVM:      viewdata.NewBaseVM(r, "Departments", "/dashboard"),
		Departments: deps,
		Error:       msg,
		Name:        name,
	})
}
