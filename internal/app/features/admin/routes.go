// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /admin/users.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		// Only signed-in admins can manage users.
		pr.Use(sm.RequireRole(models.RoleAdmin))

		pr.Get("/", h.ServeUsers)
		pr.Post("/{id}/delete", h.HandleDeleteUser)
	})

	return r
}
