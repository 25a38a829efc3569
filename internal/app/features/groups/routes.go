// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /admin/groups.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleAdmin))

		// LIST
		pr.Get("/", h.ServeGroupsList)

		// CREATE
		pr.Get("/new", h.ServeNewGroup)
		pr.Post("/", h.HandleCreateGroup)

		// DELETE
		pr.Post("/{id}/delete", h.HandleDeleteGroup)
	})

	return r
}
