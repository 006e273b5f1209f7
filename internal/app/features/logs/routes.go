// internal/app/features/logs/routes.go
package logs

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogs)
	r.Post("/more", h.HandleLoadMore)
	r.Get("/export.csv", h.ServeCSV)
	r.Get("/print", h.ServePrint)
	return r
}
