// internal/app/features/posts/routes.go
package posts

import (
	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/app/system/pagecache"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at "/". cache may be nil to serve the index uncached.
func Routes(h *Handler, sm *auth.SessionManager, cache *pagecache.Cache) chi.Router {
	r := chi.NewRouter()

	// Only the global feed is cached; every other listing is composed fresh.
	if cache != nil {
		r.With(cache.Middleware("index", ViewerKey)).Get("/", h.ServeIndex)
	} else {
		r.Get("/", h.ServeIndex)
	}

	r.Get("/group/{slug}", h.ServeGroup)
	r.Get("/profile/{username}", h.ServeProfile)
	r.Get("/posts/{id}", h.ServeDetail)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// FEED
		pr.Get("/follow", h.ServeFollowFeed)

		// AUTHORING
		pr.Get("/create", h.ServeCreate)
		pr.Post("/create", h.HandleCreate)
		pr.Get("/posts/{id}/edit", h.ServeEdit)
		pr.Post("/posts/{id}/edit", h.HandleEdit)
		pr.Post("/posts/{id}/comment", h.HandleComment)

		// FOLLOW
		pr.Get("/profile/{username}/follow", h.HandleFollow)
		pr.Get("/profile/{username}/unfollow", h.HandleUnfollow)
	})

	return r
}
