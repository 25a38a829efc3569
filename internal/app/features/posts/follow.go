// internal/app/features/posts/follow.go
package posts

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/app/system/follow"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleFollow follows the profile's author and returns to the profile.
// Following oneself or an author already followed changes nothing.
// GET /profile/{username}/follow
func (h *Handler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	author, ok := h.lookupAuthor(ctx, w, r)
	if !ok {
		return
	}

	created, err := h.Follow.Follow(ctx, auth.UserID(r), author.ID)
	if err != nil && !errors.Is(err, follow.ErrSelfFollow) {
		h.ErrLog.LogServerError(w, r, "follow failed", err, "", profilePath(author))
		return
	}
	if created {
		h.Log.Info("follow created",
			zap.String("user_id", auth.UserID(r).Hex()),
			zap.String("author", author.Username))
	}
	http.Redirect(w, r, profilePath(author), http.StatusSeeOther)
}

// HandleUnfollow removes the follow edge. It is a 404 when there is none.
// GET /profile/{username}/unfollow
func (h *Handler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	author, ok := h.lookupAuthor(ctx, w, r)
	if !ok {
		return
	}

	err := h.Follow.Unfollow(ctx, auth.UserID(r), author.ID)
	switch {
	case err == nil:
		http.Redirect(w, r, profilePath(author), http.StatusSeeOther)
	case errors.Is(err, follow.ErrNotFollowing):
		h.ErrLog.NotFound(w, r)
	default:
		h.ErrLog.LogServerError(w, r, "unfollow failed", err, "", profilePath(author))
	}
}

func (h *Handler) lookupAuthor(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	author, err := h.Users.GetByUsername(ctx, chi.URLParam(r, "username"))
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.NotFound(w, r)
		return models.User{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "lookup author failed", err, "", "/")
		return models.User{}, false
	}
	return author, true
}

func profilePath(u models.User) string {
	return "/profile/" + url.PathEscape(u.Username)
}
