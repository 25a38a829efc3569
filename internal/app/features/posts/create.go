// internal/app/features/posts/create.go
package posts

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/app/system/authoring"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /create                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, formData{})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /create                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	form, err := parsePostForm(w, r)
	if err != nil {
		if isTooLarge(err) {
			h.renderForm(w, r, http.StatusBadRequest, formData{
				Errors: authoring.ValidationErrors{"image": "Image is too large."},
			})
			return
		}
		h.ErrLog.LogBadRequest(w, r, "parse post form failed", err, "Invalid form data.", "/create")
		return
	}
	defer form.Close()

	data := formData{Text: form.Text, Groups: selectedGroup(form.GroupHex)}

	in, verrs := form.input()
	if verrs != nil {
		data.Errors = verrs
		h.renderForm(w, r, http.StatusBadRequest, data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	post, err := h.Author.CreatePost(ctx, user.ObjectID(), in)
	if err != nil {
		if verrs, ok := asValidation(err); ok {
			data.Errors = verrs
			h.renderForm(w, r, http.StatusBadRequest, data)
			return
		}
		h.ErrLog.LogServerError(w, r, "create post failed", err, "We could not save your post.", "/create")
		return
	}

	h.Log.Info("post created",
		zap.String("post_id", post.ID.Hex()),
		zap.String("author", user.Username))

	http.Redirect(w, r, "/profile/"+url.PathEscape(user.Username), http.StatusSeeOther)
}
