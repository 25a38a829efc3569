// internal/app/features/password/routes.go
package password

import (
	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /auth/password_change.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeChange)
	r.Post("/", h.HandleChange)
	r.Get("/done", h.ServeDone)
	return r
}
