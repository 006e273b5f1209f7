// internal/app/features/profile/handler.go
package profile

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	"github.com/nmercer/insighthub/internal/app/system/gates"
	"github.com/nmercer/insighthub/internal/app/system/viewdata"
	"github.com/nmercer/insighthub/internal/domain/models"
)

// The profile page shows the operator's own account as the monitoring API
// reports it. The profile is refreshed on every request by the session
// middleware, so there is nothing to fetch here.
type Handler struct {
	Log *zap.Logger
}

type profilePageData struct {
	viewdata.BaseVM
	Profile   *models.UserProfile
	RoleLabel string
}

// ServeProfile renders the signed-in operator's account details.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}

	templates.Render(w, r, "profile", profilePageData{
		BaseVM:    viewdata.NewBaseVM(r, "Profile", "/dashboard"),
		Profile:   res.User.Profile,
		RoleLabel: models.RoleLabel(res.Role),
	})
}
