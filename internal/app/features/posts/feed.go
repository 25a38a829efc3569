// internal/app/features/posts/feed.go
package posts

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/app/system/feed"
	"github.com/dalemusser/postboard/internal/app/system/paging"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeIndex renders the global feed. The route wraps it in the page cache.
func (h *Handler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	res, ok := h.compose(w, r, feed.Global())
	if !ok {
		return
	}
	h.Render(w, r, "posts_feed", feedData{
		BaseVM:    viewdata.NewBaseVM(r, "Latest posts", "/"),
		Heading:   "Latest posts",
		EmptyText: "Nobody has posted yet.",
		Posts:     h.cards(res.Items, viewerHex(r)),
		Page:      res.Page,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /group/{slug}                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	res, ok := h.compose(w, r, feed.Group(chi.URLParam(r, "slug")))
	if !ok {
		return
	}
	h.Render(w, r, "posts_feed", feedData{
		BaseVM:      viewdata.NewBaseVM(r, res.Group.Title, "/"),
		Heading:     res.Group.Title,
		Description: res.Group.Description,
		EmptyText:   "No posts in this group yet.",
		Posts:       h.cards(res.Items, viewerHex(r)),
		Page:        res.Page,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /profile/{username}                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	res, ok := h.compose(w, r, feed.Author(chi.URLParam(r, "username")))
	if !ok {
		return
	}
	viewer := viewerHex(r)
	a := res.Author
	h.Render(w, r, "posts_feed", feedData{
		BaseVM:    viewdata.NewBaseVM(r, "Posts by "+a.DisplayName(), "/"),
		Heading:   a.DisplayName(),
		EmptyText: "No posts yet.",
		Posts:     h.cards(res.Items, viewer),
		Page:      res.Page,
		Author: &authorVM{
			Username:  a.Username,
			Name:      a.DisplayName(),
			PostCount: res.PostCount,
			Following: res.Following,
			CanFollow: viewer != "" && viewer != a.ID.Hex(),
		},
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /follow                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeFollowFeed(w http.ResponseWriter, r *http.Request) {
	res, ok := h.compose(w, r, feed.Followed())
	if !ok {
		return
	}
	h.Render(w, r, "posts_feed", feedData{
		BaseVM:    viewdata.NewBaseVM(r, "Following", "/"),
		Heading:   "Posts from authors you follow",
		EmptyText: "Follow some authors to see their posts here.",
		Posts:     h.cards(res.Items, viewerHex(r)),
		Page:      res.Page,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// compose runs the feed composer for the request's user and page and writes
// the error response itself when it fails.
func (h *Handler) compose(w http.ResponseWriter, r *http.Request, scope feed.Scope) (feed.Result, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Feed.Compose(ctx, scope, auth.UserID(r), paging.ParsePage(r))
	if err != nil {
		h.feedError(w, r, err, "compose "+scope.Kind.String()+" feed")
		return feed.Result{}, false
	}
	return res, true
}

func (h *Handler) feedError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, feed.ErrNotFound):
		h.Log.Debug(msg, zap.Error(err))
		h.ErrLog.NotFound(w, r)
	case errors.Is(err, feed.ErrUnauthorized):
		http.Redirect(w, r, auth.LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
	default:
		h.ErrLog.LogServerError(w, r, msg, err, "We could not load these posts.", "/")
	}
}

// viewerHex returns the signed-in user's ID or "" for visitors.
func viewerHex(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return u.ID
	}
	return ""
}

// ViewerKey partitions cached pages by signed-in user.
func ViewerKey(r *http.Request) string {
	return viewerHex(r)
}

func parseID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	return id, err == nil
}
