// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/nmercer/insighthub/internal/app/system/auth"
	"github.com/nmercer/insighthub/internal/app/system/pagedlist"
)

type Handler struct {
	Log   *zap.Logger
	Lists *pagedlist.Registry
}

func NewHandler(lists *pagedlist.Registry, logger *zap.Logger) *Handler {
	return &Handler{
		Log:   logger,
		Lists: lists,
	}
}

// ServeLogout handles POST /logout. It scrubs the session and releases the
// session's accumulated lists.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	sid, err := auth.SignOut(w, r)
	if err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	if sid != "" && h.Lists != nil {
		h.Lists.Drop(sid)
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation to "/".
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}

	// Non-HTMX: standard redirect home.
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
