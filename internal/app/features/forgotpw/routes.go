// internal/app/features/forgotpw/routes.go
package forgotpw

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeForm)
	r.Post("/", h.HandleResetPost)
	return r
}
