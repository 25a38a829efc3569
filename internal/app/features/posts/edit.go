// internal/app/features/posts/edit.go
package posts

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/app/system/authoring"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /posts/{id}/edit                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeEdit shows the edit form to the post's author. Anyone else is sent
// back to the post.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.ErrLog.NotFound(w, r)
		return
	}

	p, ok := h.ownedPost(w, r, id)
	if !ok {
		return
	}

	data := formData{IsEdit: true, PostID: id.Hex(), Text: p.Text}
	if p.GroupID != nil {
		data.Groups = selectedGroup(p.GroupID.Hex())
	}
	if p.ImagePath != "" && h.Images != nil {
		data.ImageURL = h.Images.URL(p.ImagePath)
	}
	h.renderForm(w, r, http.StatusOK, data)
}

// ownedPost loads the post and checks the signed-in user wrote it. On false
// the response has been written: 404 for an unknown post, a redirect to the
// post for anyone but its author.
func (h *Handler) ownedPost(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) (models.Post, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Posts.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.NotFound(w, r)
		return models.Post{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load post for edit", err, "", "/posts/"+id.Hex())
		return models.Post{}, false
	}
	if p.AuthorID != auth.UserID(r) {
		http.Redirect(w, r, "/posts/"+id.Hex(), http.StatusSeeOther)
		return models.Post{}, false
	}
	return p, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /posts/{id}/edit                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.ErrLog.NotFound(w, r)
		return
	}
	detail := "/posts/" + id.Hex()

	if _, ok := h.ownedPost(w, r, id); !ok {
		return
	}

	form, err := parsePostForm(w, r)
	if err != nil {
		if isTooLarge(err) {
			h.renderForm(w, r, http.StatusBadRequest, formData{
				IsEdit: true,
				PostID: id.Hex(),
				Errors: authoring.ValidationErrors{"image": "Image is too large."},
			})
			return
		}
		h.ErrLog.LogBadRequest(w, r, "parse post form failed", err, "Invalid form data.", detail)
		return
	}
	defer form.Close()

	data := formData{IsEdit: true, PostID: id.Hex(), Text: form.Text, Groups: selectedGroup(form.GroupHex)}

	in, verrs := form.input()
	if verrs != nil {
		data.Errors = verrs
		h.renderForm(w, r, http.StatusBadRequest, data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, err = h.Author.EditPost(ctx, auth.UserID(r), id, in)
	switch {
	case err == nil:
		h.Log.Info("post edited", zap.String("post_id", id.Hex()))
		http.Redirect(w, r, detail, http.StatusSeeOther)
	case errors.Is(err, authoring.ErrForbidden):
		http.Redirect(w, r, detail, http.StatusSeeOther)
	case errors.Is(err, authoring.ErrNotFound):
		h.ErrLog.NotFound(w, r)
	default:
		if verrs, ok := asValidation(err); ok {
			data.Errors = verrs
			h.renderForm(w, r, http.StatusBadRequest, data)
			return
		}
		h.ErrLog.LogServerError(w, r, "edit post failed", err, "We could not save your changes.", detail)
	}
}
