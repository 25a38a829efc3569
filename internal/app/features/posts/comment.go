// internal/app/features/posts/comment.go
package posts

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/app/system/authoring"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandleComment adds a comment and returns to the post. Invalid text is
// dropped without a message.
// POST /posts/{id}/comment
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.ErrLog.NotFound(w, r)
		return
	}
	detail := "/posts/" + id.Hex()

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse comment form failed", err, "Invalid form data.", detail)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, err := h.Author.AddComment(ctx, auth.UserID(r), id, r.FormValue("text"))
	if err != nil {
		if errors.Is(err, authoring.ErrNotFound) {
			h.ErrLog.NotFound(w, r)
			return
		}
		if _, invalid := asValidation(err); invalid {
			h.Log.Debug("comment dropped", zap.String("post_id", id.Hex()), zap.Error(err))
			http.Redirect(w, r, detail, http.StatusSeeOther)
			return
		}
		h.ErrLog.LogServerError(w, r, "add comment failed", err, "We could not save your comment.", detail)
		return
	}

	http.Redirect(w, r, detail, http.StatusSeeOther)
}
