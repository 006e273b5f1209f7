// internal/app/features/overview/handler.go
package overview

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/system/chartdata"
	"github.com/nmercer/insighthub/internal/app/system/daterange"
	"github.com/nmercer/insighthub/internal/app/system/gates"
	"github.com/nmercer/insighthub/internal/app/system/timeouts"
	"github.com/nmercer/insighthub/internal/app/system/viewdata"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

type Handler struct {
	Monitor *monitorapi.Client
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

type overviewPageData struct {
	viewdata.BaseVM
	Range      daterange.Range
	ScopeLabel string
	KPIs       chartdata.KPISet
	Charts     chartdata.ChartsVM
	NoData     bool
}

// ServeOverview renders the aggregated KPI and chart dashboard. The scope is
// the viewer's department (empty for C-suite) unless a user is selected, in
// which case the aggregation narrows to that user.
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}

	rng := daterange.FromQuery(r, time.Now())

	q := monitorapi.DashboardQuery{
		Range:      rng,
		Department: res.Scope,
	}
	if sel := res.User.Selected; sel != nil {
		q.User = sel.ID
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "dashboard")
	defer cancel()

	data := overviewPageData{
		BaseVM: viewdata.NewBaseVM(r, "Overview", "/"),
		Range:  rng,
	}

	payload, err := h.Monitor.Dashboard(ctx, res.User.Token, q)
	switch {
	case err == nil:
		data.KPIs = chartdata.KPIs(payload.KPIs)
		data.Charts = chartdata.FromChartSet(payload.Charts)
		data.ScopeLabel = payload.Scope.Label
	case monitorapi.IsNoData(err):
		// an empty range is a normal state, not a failure
		data.NoData = true
	case monitorapi.IsAuthError(err):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	default:
		h.ErrLog.LogUpstreamError(w, r, "dashboard fetch failed", err,
			"Could not load dashboard data. Please try again shortly.", "/")
		return
	}

	if data.ScopeLabel == "" {
		switch {
		case res.User.Selected != nil:
			data.ScopeLabel = res.User.Selected.DisplayName()
		case res.Scope != "":
			data.ScopeLabel = res.Scope
		default:
			data.ScopeLabel = "Organization"
		}
	}

	templates.Render(w, r, "overview", data)
}
