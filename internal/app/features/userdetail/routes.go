// internal/app/features/userdetail/routes.go
package userdetail

import "github.com/go-chi/chi/v5"

// Routes is mounted under the user directory at /{companyUsername}.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeDetail)
	r.Get("/logs", h.ServeLogs)
	r.Post("/logs/more", h.HandleLogsMore)
	r.Get("/logs/export.csv", h.ServeLogsCSV)
	r.Get("/logs/print", h.ServeLogsPrint)
	r.Get("/screenshots", h.ServeScreenshots)
	r.Post("/screenshots/more", h.HandleScreenshotsMore)
	r.Get("/edit", h.ServeEditForm)
	r.Post("/edit", h.HandleEditPost)
	return r
}
