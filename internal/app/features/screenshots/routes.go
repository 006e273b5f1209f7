// internal/app/features/screenshots/routes.go
package screenshots

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeScreenshots)
	r.Post("/more", h.HandleLoadMore)
	return r
}
