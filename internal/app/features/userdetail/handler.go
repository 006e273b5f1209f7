// internal/app/features/userdetail/handler.go
package userdetail

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/system/chartdata"
	"github.com/nmercer/insighthub/internal/app/system/daterange"
	"github.com/nmercer/insighthub/internal/app/system/exportutil"
	"github.com/nmercer/insighthub/internal/app/system/gates"
	"github.com/nmercer/insighthub/internal/app/system/listnorm"
	"github.com/nmercer/insighthub/internal/app/system/pagedlist"
	"github.com/nmercer/insighthub/internal/app/system/timeouts"
	"github.com/nmercer/insighthub/internal/app/system/viewdata"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

type Handler struct {
	Monitor *monitorapi.Client
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
	Lists   *pagedlist.Registry
}

// loadUser resolves the routed user and enforces the department boundary.
// Returns ok=false after writing the response.
func (h *Handler) loadUser(w http.ResponseWriter, r *http.Request, res gates.Result) (monitorapi.User, bool) {
	username := chi.URLParam(r, "companyUsername")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "get-user")
	defer cancel()

	user, err := h.Monitor.GetUser(ctx, res.User.Token, username)
	if err != nil {
		if monitorapi.IsAuthError(err) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return monitorapi.User{}, false
		}
		h.ErrLog.LogUpstreamError(w, r, "user fetch failed", err,
			"Could not load that user.", "/dashboard/users")
		return monitorapi.User{}, false
	}
	if res.Scope != "" && !strings.EqualFold(user.Department, res.Scope) {
		uierrors.RenderForbidden(w, r, "That user is outside your department.", "/dashboard/users")
		return monitorapi.User{}, false
	}
	return user, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| Profile & analysis                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

type detailPageData struct {
	viewdata.BaseVM
	User   monitorapi.User
	Range  daterange.Range
	KPIs   chartdata.KPISet
	Charts chartdata.ChartsVM
	NoData bool
	Tab    string
}

// ServeDetail renders the per-user analysis page: profile header, KPIs and
// the chart blocks for the requested range.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	user, ok := h.loadUser(w, r, res)
	if !ok {
		return
	}

	rng := daterange.FromQuery(r, time.Now())

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "user-analysis")
	defer cancel()

	data := detailPageData{
		BaseVM: viewdata.NewBaseVM(r, user.UsernameKey(), "/dashboard/users"),
		User:   user,
		Range:  rng,
		Tab:    "overview",
	}

	key := user.UniqueID()
	if key == "" {
		// usernames are not guaranteed unique across departments
		key = user.UsernameKey()
		h.Log.Warn("user analysis keyed by username", zap.String("user", key))
	}
	analysis, err := h.Monitor.UserAnalysis(ctx, res.User.Token, key, rng)
	switch {
	case err == nil:
		data.KPIs = chartdata.KPIs(analysis.KPIs)
		data.Charts = chartdata.FromChartSet(analysis.Charts)
	case monitorapi.IsNoData(err):
		data.NoData = true
	case monitorapi.IsAuthError(err):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	default:
		h.ErrLog.LogUpstreamError(w, r, "user analysis fetch failed", err,
			"Could not load activity analysis for that user.", "/dashboard/users")
		return
	}

	templates.Render(w, r, "user_detail", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Logs tab                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type logsTabData struct {
	viewdata.BaseVM
	User    monitorapi.User
	Range   daterange.Range
	Rows    []monitorapi.LogRow
	Total   int
	HasMore bool
	Tab     string
}

func (h *Handler) logsFetcher(token, uid string, rng daterange.Range) pagedlist.Fetcher {
	return func(ctx context.Context, page, limit int) (listnorm.PagedList, error) {
		return h.Monitor.Logs(ctx, token, monitorapi.ListQuery{
			Range:     rng,
			Page:      page,
			Limit:     limit,
			UserMacID: uid,
		})
	}
}

func (h *Handler) screenshotsFetcher(token, uid string, rng daterange.Range) pagedlist.Fetcher {
	return func(ctx context.Context, page, limit int) (listnorm.PagedList, error) {
		return h.Monitor.Screenshots(ctx, token, monitorapi.ListQuery{
			Range:     rng,
			Page:      page,
			Limit:     limit,
			UserMacID: uid,
		})
	}
}

func userScopeSig(kind, uid string, rng daterange.Range) string {
	return pagedlist.ScopeSig(kind, uid, rng.Signature())
}

// ServeLogs renders the accumulated activity-log list for the user.
func (h *Handler) ServeLogs(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	user, ok := h.loadUser(w, r, res)
	if !ok {
		return
	}

	rng := daterange.FromQuery(r, time.Now())
	acc := h.Lists.Bundle(res.User.SessionID).Logs
	acc.Bind(userScopeSig("logs", user.UniqueID(), rng))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "user-logs")
	defer cancel()

	if err := acc.EnsureLoaded(ctx, h.logsFetcher(res.User.Token, user.UniqueID(), rng)); err != nil && !monitorapi.IsNoData(err) {
		if monitorapi.IsAuthError(err) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.ErrLog.LogUpstreamError(w, r, "user logs fetch failed", err,
			"Could not load activity logs.", "/dashboard/users")
		return
	}

	snap := acc.Snapshot()
	templates.Render(w, r, "user_logs", logsTabData{
		BaseVM:  viewdata.NewBaseVM(r, user.UsernameKey()+" logs", "/dashboard/users/"+user.UsernameKey()),
		User:    user,
		Range:   rng,
		Rows:    listnorm.DecodeItems[monitorapi.LogRow](snap.Items),
		Total:   snap.Total,
		HasMore: snap.HasMore,
		Tab:     "logs",
	})
}

// HandleLogsMore loads the next page and returns to the logs tab.
func (h *Handler) HandleLogsMore(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	user, ok := h.loadUser(w, r, res)
	if !ok {
		return
	}

	rng := daterange.FromQuery(r, time.Now())
	acc := h.Lists.Bundle(res.User.SessionID).Logs
	acc.Bind(userScopeSig("logs", user.UniqueID(), rng))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "user-logs-more")
	defer cancel()

	if err := acc.LoadMore(ctx, h.logsFetcher(res.User.Token, user.UniqueID(), rng)); err != nil && !monitorapi.IsNoData(err) {
		h.Log.Warn("load-more failed", zap.Error(err))
	}

	http.Redirect(w, r, logsURL(user, rng), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Screenshots tab                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type screenshotsTabData struct {
	viewdata.BaseVM
	User    monitorapi.User
	Range   daterange.Range
	Shots   []monitorapi.Screenshot
	Total   int
	HasMore bool
	Tab     string
}

// ServeScreenshots renders the accumulated screenshot grid for the user.
func (h *Handler) ServeScreenshots(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	user, ok := h.loadUser(w, r, res)
	if !ok {
		return
	}

	rng := daterange.FromQuery(r, time.Now())
	acc := h.Lists.Bundle(res.User.SessionID).Screenshots
	acc.Bind(userScopeSig("shots", user.UniqueID(), rng))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "user-screenshots")
	defer cancel()

	if err := acc.EnsureLoaded(ctx, h.screenshotsFetcher(res.User.Token, user.UniqueID(), rng)); err != nil && !monitorapi.IsNoData(err) {
		if monitorapi.IsAuthError(err) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.ErrLog.LogUpstreamError(w, r, "user screenshots fetch failed", err,
			"Could not load screenshots.", "/dashboard/users")
		return
	}

	snap := acc.Snapshot()
	templates.Render(w, r, "user_screenshots", screenshotsTabData{
		BaseVM:  viewdata.NewBaseVM(r, user.UsernameKey()+" screenshots", "/dashboard/users/"+user.UsernameKey()),
		User:    user,
		Range:   rng,
		Shots:   listnorm.DecodeItems[monitorapi.Screenshot](snap.Items),
		Total:   snap.Total,
		HasMore: snap.HasMore,
		Tab:     "screenshots",
	})
}

// HandleScreenshotsMore loads the next page and returns to the tab.
func (h *Handler) HandleScreenshotsMore(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	user, ok := h.loadUser(w, r, res)
	if !ok {
		return
	}

	rng := daterange.FromQuery(r, time.Now())
	acc := h.Lists.Bundle(res.User.SessionID).Screenshots
	acc.Bind(userScopeSig("shots", user.UniqueID(), rng))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "user-screenshots-more")
	defer cancel()

	if err := acc.LoadMore(ctx, h.screenshotsFetcher(res.User.Token, user.UniqueID(), rng)); err != nil && !monitorapi.IsNoData(err) {
		h.Log.Warn("load-more failed", zap.Error(err))
	}

	http.Redirect(w, r, screenshotsURL(user, rng), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Export                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// exportRowCap bounds how many rows a single export will pull from the
// backend. 50 pages at the logs page size.
const exportRowCap = 50 * pagedlist.LogsPageSize

// fetchAllLogs pages through the full range for exports, independent of the
// session accumulator.
func (h *Handler) fetchAllLogs(ctx context.Context, token, uid string, rng daterange.Range) ([]monitorapi.LogRow, error) {
	var rows []monitorapi.LogRow
	for page := 1; len(rows) < exportRowCap; page++ {
		pl, err := h.Monitor.Logs(ctx, token, monitorapi.ListQuery{
			Range:     rng,
			Page:      page,
			Limit:     pagedlist.LogsPageSize,
			UserMacID: uid,
		})
		if err != nil {
			if monitorapi.IsNoData(err) {
				break
			}
			return nil, err
		}
		if len(pl.Items) == 0 {
			break
		}
		rows = append(rows, listnorm.DecodeItems[monitorapi.LogRow](pl.Items)...)
		if pl.Total > 0 && len(rows) >= pl.Total {
			break
		}
	}
	return rows, nil
}

// ServeLogsCSV streams the user's logs for the range as a CSV download.
func (h *Handler) ServeLogsCSV(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	user, ok := h.loadUser(w, r, res)
	if !ok {
		return
	}

	rng := daterange.FromQuery(r, time.Now())

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Export(), h.Log, "user-logs-csv")
	defer cancel()

	rows, err := h.fetchAllLogs(ctx, res.User.Token, user.UniqueID(), rng)
	if err != nil {
		h.ErrLog.LogUpstreamError(w, r, "export fetch failed", err,
			"Could not export logs.", logsURL(user, rng))
		return
	}

	h.Log.Info("logs exported",
		zap.String("user", user.UniqueID()),
		zap.Int("rows", len(rows)),
		zap.String("by", res.Name))

	exportutil.WriteLogsCSV(w, rows, time.Now().Format(daterange.Layout), h.Log)
}

// ServeLogsPrint renders the print-ready log report.
func (h *Handler) ServeLogsPrint(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	user, ok := h.loadUser(w, r, res)
	if !ok {
		return
	}

	rng := daterange.FromQuery(r, time.Now())

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Export(), h.Log, "user-logs-print")
	defer cancel()

	rows, err := h.fetchAllLogs(ctx, res.User.Token, user.UniqueID(), rng)
	if err != nil {
		h.ErrLog.LogUpstreamError(w, r, "print fetch failed", err,
			"Could not prepare the report.", logsURL(user, rng))
		return
	}

	title := "Activity report: " + user.UsernameKey()
	subtitle := rng.From + " to " + rng.To
	exportutil.WritePrintableLogs(w, rows, title, subtitle, h.Log)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Edit                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type editPageData struct {
	viewdata.BaseVM
	User  monitorapi.User
	Error string
}

// ServeEditForm shows the user-record edit form.
func (h *Handler) ServeEditForm(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	user, ok := h.loadUser(w, r, res)
	if !ok {
		return
	}

	templates.Render(w, r, "user_edit", editPageData{
		BaseVM: viewdata.NewBaseVM(r, "Edit "+user.UsernameKey(), "/dashboard/users/"+user.UsernameKey()),
		User:   user,
	})
}

// HandleEditPost updates the user record via the backend.
func (h *Handler) HandleEditPost(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	user, ok := h.loadUser(w, r, res)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.",
			"/dashboard/users/"+user.UsernameKey())
		return
	}

	fields := map[string]any{
		"full_name":  strings.TrimSpace(r.FormValue("full_name")),
		"contact_no": strings.TrimSpace(r.FormValue("contact_no")),
		"is_active":  r.FormValue("is_active") == "on",
	}
	// only c-suite may move a user between departments
	if res.Scope == "" {
		if dept := strings.TrimSpace(r.FormValue("department")); dept != "" {
			fields["department"] = dept
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update-user")
	defer cancel()

	if err := h.Monitor.UpdateUser(ctx, res.User.Token, user.UsernameKey(), fields); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		msg := "Could not save changes."
		var ae *monitorapi.APIError
		if errors.As(err, &ae) {
			msg = ae.Message
		} else {
			h.Log.Error("update user failed", zap.Error(err))
		}
		templates.Render(w, r, "user_edit", editPageData{
			BaseVM: viewdata.NewBaseVM(r, "Edit "+user.UsernameKey(), "/dashboard/users/"+user.UsernameKey()),
			User:   user,
			Error:  msg,
		})
		return
	}

	h.Log.Info("monitored user updated",
		zap.String("company_username", user.UsernameKey()),
		zap.String("by", res.Name))

	http.Redirect(w, r, "/dashboard/users/"+user.UsernameKey(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func logsURL(user monitorapi.User, rng daterange.Range) string {
	return "/dashboard/users/" + user.UsernameKey() + "/logs?from=" + rng.From + "&to=" + rng.To
}

func screenshotsURL(user monitorapi.User, rng daterange.Range) string {
	return "/dashboard/users/" + user.UsernameKey() + "/screenshots?from=" + rng.From + "&to=" + rng.To
}
