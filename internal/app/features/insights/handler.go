// internal/app/features/insights/handler.go
package insights

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

type insightsPageData struct {
	viewdata.BaseVM
	Range  daterange.Range
	KPIs   chartdata.KPISet
	Charts chartdata.ChartsVM
	NoData bool
}

// ServeInsights renders the per-user analysis charts for the selected user.
func (h *Handler) ServeInsights(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	sel, ok := gates.RequireSelectedUser(w, r)
	if !ok {
		return
	}

	rng := daterange.FromQuery(r, time.Now())

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "insights")
	defer cancel()

	data := insightsPageData{
		BaseVM: viewdata.NewBaseVM(r, "Insights", "/dashboard"),
		Range:  rng,
	}

	analysis, err := h.Monitor.UserAnalysis(ctx, res.User.Token, sel.ID, rng)
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
		h.ErrLog.LogUpstreamError(w, r, "insights fetch failed", err,
			"Could not load insights.", "/dashboard")
		return
	}

	templates.Render(w, r, "insights", data)
}
