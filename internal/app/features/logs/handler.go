// internal/app/features/logs/handler.go
package logs

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/system/daterange"
	"github.com/nmercer/insighthub/internal/app/system/exportutil"
	"github.com/nmercer/insighthub/internal/app/system/gates"
	"github.com/nmercer/insighthub/internal/app/system/listnorm"
	"github.com/nmercer/insighthub/internal/app/system/pagedlist"
	"github.com/nmercer/insighthub/internal/app/system/timeouts"
	"github.com/nmercer/insighthub/internal/app/system/viewdata"
	"github.com/nmercer/insighthub/internal/domain/models"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

// The logs page is scoped to the selected user; without a selection the
// caller is sent to the directory to pick one.
type Handler struct {
	Monitor *monitorapi.Client
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
	Lists   *pagedlist.Registry
}

type logsPageData struct {
	viewdata.BaseVM
	Range   daterange.Range
	Rows    []monitorapi.LogRow
	Total   int
	HasMore bool
}

func (h *Handler) fetcher(token string, sel *models.SelectedUser, rng daterange.Range) pagedlist.Fetcher {
	return func(ctx context.Context, page, limit int) (listnorm.PagedList, error) {
		return h.Monitor.Logs(ctx, token, monitorapi.ListQuery{
			Range:     rng,
			Page:      page,
			Limit:     limit,
			UserMacID: sel.ID,
		})
	}
}

// ServeLogs renders the accumulated activity-log list for the selected user.
func (h *Handler) ServeLogs(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	sel, ok := gates.RequireSelectedUser(w, r)
	if !ok {
		return
	}

	rng := daterange.FromQuery(r, time.Now())
	acc := h.Lists.Bundle(res.User.SessionID).Logs
	acc.Bind(pagedlist.ScopeSig("logs", sel.ID, rng.Signature()))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "logs")
	defer cancel()

	if err := acc.EnsureLoaded(ctx, h.fetcher(res.User.Token, sel, rng)); err != nil && !monitorapi.IsNoData(err) {
		if monitorapi.IsAuthError(err) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.ErrLog.LogUpstreamError(w, r, "logs fetch failed", err,
			"Could not load activity logs.", "/dashboard")
		return
	}

	snap := acc.Snapshot()
	templates.Render(w, r, "logs", logsPageData{
		BaseVM:  viewdata.NewBaseVM(r, "Activity logs", "/dashboard"),
		Range:   rng,
		Rows:    listnorm.DecodeItems[monitorapi.LogRow](snap.Items),
		Total:   snap.Total,
		HasMore: snap.HasMore,
	})
}

// HandleLoadMore loads the next page and returns to the list.
func (h *Handler) HandleLoadMore(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	sel, ok := gates.RequireSelectedUser(w, r)
	if !ok {
		return
	}

	rng := daterange.FromQuery(r, time.Now())
	acc := h.Lists.Bundle(res.User.SessionID).Logs
	acc.Bind(pagedlist.ScopeSig("logs", sel.ID, rng.Signature()))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "logs-more")
	defer cancel()

	if err := acc.LoadMore(ctx, h.fetcher(res.User.Token, sel, rng)); err != nil && !monitorapi.IsNoData(err) {
		h.Log.Warn("load-more failed", zap.Error(err))
	}

	http.Redirect(w, r, "/dashboard/logs?from="+rng.From+"&to="+rng.To, http.StatusSeeOther)
}

// ServeCSV exports whatever is loaded for the current scope as a CSV file.
// The accumulator is filled first so a fresh session still gets page one.
func (h *Handler) ServeCSV(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	sel, ok := gates.RequireSelectedUser(w, r)
	if !ok {
		return
	}

	rng := daterange.FromQuery(r, time.Now())
	acc := h.Lists.Bundle(res.User.SessionID).Logs
	acc.Bind(pagedlist.ScopeSig("logs", sel.ID, rng.Signature()))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Export(), h.Log, "logs-csv")
	defer cancel()

	if err := acc.EnsureLoaded(ctx, h.fetcher(res.User.Token, sel, rng)); err != nil && !monitorapi.IsNoData(err) {
		h.ErrLog.LogUpstreamError(w, r, "export fetch failed", err,
			"Could not export logs.", "/dashboard/logs")
		return
	}

	rows := listnorm.DecodeItems[monitorapi.LogRow](acc.Snapshot().Items)
	h.Log.Info("logs exported",
		zap.String("user", sel.ID),
		zap.Int("rows", len(rows)),
		zap.String("by", res.Name))

	exportutil.WriteLogsCSV(w, rows, time.Now().Format(daterange.Layout), h.Log)
}

// ServePrint renders the loaded rows as a print-ready report.
func (h *Handler) ServePrint(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	sel, ok := gates.RequireSelectedUser(w, r)
	if !ok {
		return
	}

	rng := daterange.FromQuery(r, time.Now())
	acc := h.Lists.Bundle(res.User.SessionID).Logs
	acc.Bind(pagedlist.ScopeSig("logs", sel.ID, rng.Signature()))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Export(), h.Log, "logs-print")
	defer cancel()

	if err := acc.EnsureLoaded(ctx, h.fetcher(res.User.Token, sel, rng)); err != nil && !monitorapi.IsNoData(err) {
		h.ErrLog.LogUpstreamError(w, r, "print fetch failed", err,
			"Could not prepare the report.", "/dashboard/logs")
		return
	}

	rows := listnorm.DecodeItems[monitorapi.LogRow](acc.Snapshot().Items)
	title := "Activity report: " + sel.DisplayName()
	subtitle := rng.From + " to " + rng.To
	exportutil.WritePrintableLogs(w, rows, title, subtitle, h.Log)
}

