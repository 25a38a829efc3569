// internal/app/features/signup/routes.go
package signup

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts at /auth/signup. limit throttles POSTs; nil disables it.
func Routes(h *Handler, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeSignup)
	if limit != nil {
		r.With(limit).Post("/", h.HandleSignup)
	} else {
		r.Post("/", h.HandleSignup)
	}
	return r
}
