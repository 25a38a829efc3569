// internal/app/features/groups/groupnew.go
package groups

import (
	"context"
	"errors"
	"net/http"
	"strings"

	groupstore "github.com/dalemusser/postboard/internal/app/store/groups"
	"github.com/dalemusser/postboard/internal/app/system/inputval"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/app/system/viewdata"
	"github.com/dalemusser/postboard/internal/domain/models"
	"go.uber.org/zap"
)

// createGroupInput defines validation rules for creating a group.
type createGroupInput struct {
	Title       string `form:"title" validate:"required,max=200" label:"Title"`
	Slug        string `form:"slug" validate:"required,max=50" label:"Slug"`
	Description string `form:"description" validate:"max=2000" label:"Description"`
}

type newGroupData struct {
	viewdata.BaseVM
	Title       string
	Slug        string
	Description string
	Errors      map[string]string
}

// ServeNewGroup renders the Add Group page.
// GET /admin/groups/new
func (h *Handler) ServeNewGroup(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, "group_new", newGroupData{
		BaseVM: viewdata.NewBaseVM(r, "Add group", "/admin/groups"),
	})
}

// HandleCreateGroup processes the Add Group form submission.
// POST /admin/groups
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/groups")
		return
	}

	input := createGroupInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Slug:        strings.TrimSpace(r.FormValue("slug")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}

	errs := map[string]string{}
	if result := inputval.Validate(input); result.HasErrors() {
		errs = result.Errors
	}
	if _, bad := errs["slug"]; !bad && !groupstore.ValidSlug(input.Slug) {
		errs["slug"] = "Slug may contain only letters, digits, hyphens and underscores."
	}
	if len(errs) > 0 {
		h.reRenderNew(w, r, input, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Groups.Create(ctx, models.Group{
		Title:       input.Title,
		Slug:        input.Slug,
		Description: input.Description,
	})
	switch {
	case errors.Is(err, groupstore.ErrDuplicateSlug):
		h.reRenderNew(w, r, input, map[string]string{"slug": "A group with this slug already exists."})
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "create group failed", err, "We could not create the group.", "/admin/groups")
		return
	}

	h.Log.Info("group created", zap.String("group_id", g.ID.Hex()), zap.String("slug", g.Slug))
	http.Redirect(w, r, "/admin/groups", http.StatusSeeOther)
}

func (h *Handler) reRenderNew(w http.ResponseWriter, r *http.Request, in createGroupInput, errs map[string]string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	h.Render(w, r, "group_new", newGroupData{
		BaseVM:      viewdata.NewBaseVM(r, "Add group", "/admin/groups"),
		Title:       in.Title,
		Slug:        in.Slug,
		Description: in.Description,
		Errors:      errs,
	})
}
