// internal/app/features/posts/form.go
package posts

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dalemusser/postboard/internal/app/system/authoring"
	"github.com/dalemusser/postboard/internal/app/system/imagestore"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxFormBytes bounds the whole post form, image included.
const maxFormBytes = imagestore.MaxImageBytes + 1<<20

// postForm is the parsed create/edit form plus the open upload, if any.
type postForm struct {
	Text       string
	GroupHex   string
	ClearImage bool

	file multipart.File
	name string
}

func (f *postForm) Close() {
	if f.file != nil {
		_ = f.file.Close()
	}
}

// input converts the form to an authoring input. Field problems found here
// are returned alongside so they merge with the service's own checks.
func (f *postForm) input() (authoring.PostInput, authoring.ValidationErrors) {
	in := authoring.PostInput{Text: f.Text, ClearImage: f.ClearImage}
	if f.GroupHex != "" {
		gid, err := primitive.ObjectIDFromHex(f.GroupHex)
		if err != nil {
			return in, authoring.ValidationErrors{"group": "Select a valid group."}
		}
		in.GroupID = &gid
	}
	if f.file != nil {
		in.Image = &authoring.Image{Filename: f.name, Body: f.file}
	}
	return in, nil
}

// parsePostForm reads a urlencoded or multipart post form.
func parsePostForm(w http.ResponseWriter, r *http.Request) (*postForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}

	f := &postForm{
		Text:       r.FormValue("text"),
		GroupHex:   strings.TrimSpace(r.FormValue("group")),
		ClearImage: r.FormValue("clear_image") != "",
	}
	if r.MultipartForm != nil {
		file, hdr, err := r.FormFile("image")
		switch {
		case err == nil && hdr.Size > 0:
			f.file, f.name = file, hdr.Filename
		case err == nil:
			_ = file.Close()
		case !errors.Is(err, http.ErrMissingFile):
			return nil, err
		}
	}
	return f, nil
}

// isTooLarge reports whether err came from the MaxBytesReader cap.
func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// renderForm re-renders the create/edit form.
func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, data formData) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	groups, err := h.Groups.List(ctx)
	if err != nil {
		h.Log.Warn("list groups for post form", zap.Error(err))
	}
	selected := ""
	for _, g := range data.Groups {
		if g.Selected {
			selected = g.ID
		}
	}
	data.Groups = groupOptions(groups, selected)

	title := "New post"
	if data.IsEdit {
		title = "Edit post"
	}
	data.BaseVM = viewdata.NewBaseVM(r, title, "/")

	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	h.Render(w, r, "post_form", data)
}

// selectedGroup marks the group the form should preselect.
func selectedGroup(hex string) []groupOption {
	if hex == "" {
		return nil
	}
	return []groupOption{{ID: hex, Selected: true}}
}

func asValidation(err error) (authoring.ValidationErrors, bool) {
	var verrs authoring.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}
