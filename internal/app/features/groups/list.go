// internal/app/features/groups/list.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/app/system/viewdata"
	"github.com/dalemusser/postboard/internal/domain/models"
)

type groupRow struct {
	ID          string
	Title       string
	Slug        string
	Description string
	PostCount   int64
}

type listData struct {
	viewdata.BaseVM
	Groups []groupRow
}

// ServeGroupsList renders every group with its post count.
// GET /admin/groups
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	groups, err := h.Groups.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list groups failed", err, "We could not load the groups.", "/")
		return
	}

	rows := make([]groupRow, 0, len(groups))
	for _, g := range groups {
		gid := g.ID
		n, err := h.Posts.Count(ctx, models.PostFilter{GroupID: &gid})
		if err != nil {
			h.ErrLog.LogServerError(w, r, "count group posts failed", err, "We could not load the groups.", "/")
			return
		}
		rows = append(rows, groupRow{
			ID:          g.ID.Hex(),
			Title:       g.Title,
			Slug:        g.Slug,
			Description: g.Description,
			PostCount:   n,
		})
	}

	h.Render(w, r, "groups_list", listData{
		BaseVM: viewdata.NewBaseVM(r, "Groups", "/"),
		Groups: rows,
	})
}
