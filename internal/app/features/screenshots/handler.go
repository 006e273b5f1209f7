// internal/app/features/screenshots/handler.go
package screenshots

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/system/daterange"
	"github.com/nmercer/insighthub/internal/app/system/gates"
	"github.com/nmercer/insighthub/internal/app/system/listnorm"
	"github.com/nmercer/insighthub/internal/app/system/pagedlist"
	"github.com/nmercer/insighthub/internal/app/system/timeouts"
	"github.com/nmercer/insighthub/internal/app/system/viewdata"
	"github.com/nmercer/insighthub/internal/domain/models"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

// The screenshots page is scoped to the selected user, same as logs.
type Handler struct {
	Monitor *monitorapi.Client
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
	Lists   *pagedlist.Registry
}

type screenshotsPageData struct {
	viewdata.BaseVM
	Range   daterange.Range
	Shots   []monitorapi.Screenshot
	Total   int
	HasMore bool
}

func (h *Handler) fetcher(token string, sel *models.SelectedUser, rng daterange.Range) pagedlist.Fetcher {
	return func(ctx context.Context, page, limit int) (listnorm.PagedList, error) {
		return h.Monitor.Screenshots(ctx, token, monitorapi.ListQuery{
			Range:     rng,
			Page:      page,
			Limit:     limit,
			UserMacID: sel.ID,
		})
	}
}

// ServeScreenshots renders the accumulated screenshot grid.
func (h *Handler) ServeScreenshots(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireDashboard(w, r)
	if !res.OK {
		return
	}
	sel, ok := gates.RequireSelectedUser(w, r)
	if !ok {
		return
	}

	rng := daterange.FromQuery(r, time.Now())
	acc := h.Lists.Bundle(res.User.SessionID).Screenshots
	acc.Bind(pagedlist.ScopeSig("shots", sel.ID, rng.Signature()))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "screenshots")
	defer cancel()

	if err := acc.EnsureLoaded(ctx, h.fetcher(res.User.Token, sel, rng)); err != nil && !monitorapi.IsNoData(err) {
		if monitorapi.IsAuthError(err) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.ErrLog.LogUpstreamError(w, r, "screenshots fetch failed", err,
			"Could not load screenshots.", "/dashboard")
		return
	}

	snap := acc.Snapshot()
	templates.Render(w, r, "screenshots", screenshotsPageData{
		BaseVM:  viewdata.NewBaseVM(r, "Screenshots", "/dashboard"),
		Range:   rng,
		Shots:   listnorm.DecodeItems[monitorapi.Screenshot](snap.Items),
		Total:   snap.Total,
		HasMore: snap.HasMore,
	})
}

// HandleLoadMore loads the next page and returns to the grid.
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
	acc := h.Lists.Bundle(res.User.SessionID).Screenshots
	acc.Bind(pagedlist.ScopeSig("shots", sel.ID, rng.Signature()))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "screenshots-more")
	defer cancel()

	if err := acc.LoadMore(ctx, h.fetcher(res.User.Token, sel, rng)); err != nil && !monitorapi.IsNoData(err) {
		h.Log.Warn("load-more failed", zap.Error(err))
	}

	http.Redirect(w, r, "/dashboard/screenshots?from="+rng.From+"&to="+rng.To, http.StatusSeeOther)
}
