// internal/app/features/settings/handler.go
package settings

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/system/auth"
	"github.com/nmercer/insighthub/internal/app/system/gates"
	"github.com/nmercer/insighthub/internal/app/system/viewdata"
	"github.com/nmercer/insighthub/internal/domain/models"
)

type Handler struct {
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

type settingsPageData struct {
	viewdata.BaseVM
	ThemeMode  string
	RoleLabel  string
	Department string
}

// ServeSettings renders the preference form with a short role summary.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}

	templates.Render(w, r, "settings", settingsPageData{
		BaseVM:     viewdata.NewBaseVM(r, "Settings", "/dashboard"),
		ThemeMode:  auth.ThemeMode(r),
		RoleLabel:  models.RoleLabel(res.User.Role()),
		Department: res.User.Profile.Department,
	})
}

// HandleThemePost stores the theme preference in the session.
func (h *Handler) HandleThemePost(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/settings")
		return
	}

	mode := r.FormValue("theme_mode")
	switch mode {
	case "light", "dark", "system":
	default:
		h.ErrLog.LogBadRequest(w, r, "unknown theme mode", nil, "Invalid theme choice.", "/settings")
		return
	}
	if err := auth.SetThemeMode(w, r, mode); err != nil {
		h.ErrLog.LogServerError(w, r, "persist theme failed", err,
			"Could not save your preference.", "/settings")
		return
	}

	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}
