// internal/app/features/settings/routes.go
package settings

import (
	"github.com/go-chi/chi/v5"

	"github.com/nmercer/insighthub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/", h.ServeSettings)
		r.Post("/theme", h.HandleThemePost)
	})
	return r
}
