// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/nmercer/insighthub/internal/app/features/userdetail"
)

// Routes serves the directory plus the nested per-user pages. The detail
// router mounts under the username param so static paths resolve first.
func Routes(h *Handler, detail *userdetail.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeDirectory)
	r.Get("/new", h.ServeCreateForm)
	r.Post("/new", h.HandleCreatePost)
	r.Post("/select", h.HandleSelect)
	r.Post("/clear-selection", h.HandleClearSelection)
	r.Mount("/{companyUsername}", userdetail.Routes(detail))
	return r
}
