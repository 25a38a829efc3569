package feed

import (
	"context"
	"fmt"

	"github.com/dalemusser/postboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentItem is a comment with its author resolved.
type CommentItem struct {
	models.Comment
	Author models.User
}

// Detail is a single post with everything its page shows.
type Detail struct {
	Item
	PostCount int64 // total posts by the post's author
	Comments  []CommentItem
}

// Detail loads one post, its author's post count and its comments.
func (c *Composer) Detail(ctx context.Context, postID primitive.ObjectID) (Detail, error) {
	p, err := c.posts.GetByID(ctx, postID)
	if err != nil {
		return Detail{}, notFound(err, "post %s", postID.Hex())
	}

	items, err := c.resolve(ctx, []models.Post{p})
	if err != nil {
		return Detail{}, err
	}

	count, err := c.posts.Count(ctx, models.PostFilter{AuthorID: &p.AuthorID})
	if err != nil {
		return Detail{}, fmt.Errorf("feed: count author posts: %w", err)
	}

	comments, err := c.comments.ListByPost(ctx, p.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("feed: list comments: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, cm := range comments {
		ids = append(ids, cm.AuthorID)
	}
	authors, err := c.users.GetManyByIDs(ctx, ids)
	if err != nil {
		return Detail{}, fmt.Errorf("feed: load commenters: %w", err)
	}

	out := Detail{
		Item:      items[0],
		PostCount: count,
		Comments:  make([]CommentItem, 0, len(comments)),
	}
	for _, cm := range comments {
		out.Comments = append(out.Comments, CommentItem{Comment: cm, Author: authors[cm.AuthorID]})
	}
	return out, nil
}
