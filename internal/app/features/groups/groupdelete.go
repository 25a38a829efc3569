// internal/app/features/groups/groupdelete.go
package groups

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/app/system/txn"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleDeleteGroup deletes a group. Its posts stay and lose their group.
// POST /admin/groups/{id}/delete
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupOID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.NotFound(w, r)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete group")
	defer cancel()

	var detached int64
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if _, err := h.Groups.GetByID(ctx, groupOID); err != nil {
			return err
		}
		n, err := h.Posts.DetachGroup(ctx, groupOID)
		if err != nil {
			return err
		}
		detached = n
		_, err = h.Groups.Delete(ctx, groupOID)
		return err
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.NotFound(w, r)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete group failed", err, "Delete failed.", "/admin/groups")
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Invalidate(ctx); err != nil {
			h.Log.Warn("page cache invalidate failed", zap.Error(err))
		}
	}

	h.Log.Info("group deleted",
		zap.String("group_id", groupOID.Hex()),
		zap.Int64("posts_detached", detached))
	http.Redirect(w, r, "/admin/groups", http.StatusSeeOther)
}
