// internal/app/features/insights/routes.go
package insights

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeInsights)
	return r
}
