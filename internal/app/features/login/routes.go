// internal/app/features/login/routes.go
package login

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts at /auth/login. limit throttles POSTs; nil disables it.
func Routes(h *Handler, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	if limit != nil {
		r.With(limit).Post("/", h.HandleLoginPost)
	} else {
		r.Post("/", h.HandleLoginPost)
	}
	return r
}
