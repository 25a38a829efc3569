// internal/app/features/admin/cascade.go
package admin

import (
	"context"

	"github.com/dalemusser/postboard/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Removal counts what DeleteUser removed.
type Removal struct {
	Username string
	Posts    int64
	Comments int64
	Follows  int64
	Images   int
}

// DeleteUser removes the user, their posts, every comment on those posts,
// their own comments and every follow edge touching them. The database work
// runs in one transaction where supported. Stored images are deleted
// afterwards; a failed image delete is logged and does not fail the call.
//
// Returns mongo.ErrNoDocuments when the user does not exist.
func (h *Handler) DeleteUser(ctx context.Context, uid primitive.ObjectID) (Removal, error) {
	var res Removal
	var images []string

	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		res = Removal{}

		u, err := h.Users.GetByID(ctx, uid)
		if err != nil {
			return err
		}
		res.Username = u.Username

		postIDs, err := h.Posts.IDsByAuthor(ctx, uid)
		if err != nil {
			return err
		}
		if images, err = h.Posts.ImagePathsByAuthor(ctx, uid); err != nil {
			return err
		}

		n, err := h.Comments.DeleteByPosts(ctx, postIDs)
		if err != nil {
			return err
		}
		res.Comments += n
		if n, err = h.Comments.DeleteByAuthor(ctx, uid); err != nil {
			return err
		}
		res.Comments += n

		if res.Posts, err = h.Posts.DeleteByAuthor(ctx, uid); err != nil {
			return err
		}
		if res.Follows, err = h.Follows.DeleteTouching(ctx, uid); err != nil {
			return err
		}

		n, err = h.Users.Delete(ctx, uid)
		if err != nil {
			return err
		}
		if n == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	})
	if err != nil {
		return Removal{}, err
	}

	if h.Images != nil {
		for _, key := range images {
			if err := h.Images.Delete(ctx, key); err != nil {
				h.Log.Warn("image delete failed", zap.String("key", key), zap.Error(err))
				continue
			}
			res.Images++
		}
	}
	if h.Cache != nil {
		if err := h.Cache.Invalidate(ctx); err != nil {
			h.Log.Warn("page cache invalidate failed", zap.Error(err))
		}
	}
	return res, nil
}
