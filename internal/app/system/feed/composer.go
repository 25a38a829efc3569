// Package feed composes paginated post listings: the global feed, a group's
// feed, an author's feed and the feed of authors a user follows. It also
// assembles the post detail view.
//
// The composer reads only. It never consults ambient request state: the
// requesting user and page number are explicit arguments.
package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/postboard/internal/app/system/paging"
	"github.com/dalemusser/postboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound means the scope's group, author or post does not exist.
	ErrNotFound = errors.New("feed: not found")
	// ErrUnauthorized means the scope requires a signed-in requester.
	ErrUnauthorized = errors.New("feed: sign-in required")
)

// Posts is the post read side of the entity store.
type Posts interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Post, error)
	Count(ctx context.Context, f models.PostFilter) (int64, error)
	List(ctx context.Context, f models.PostFilter, skip, limit int64) ([]models.Post, error)
}

// Users resolves authors.
type Users interface {
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
}

// Groups resolves groups.
type Groups interface {
	GetBySlug(ctx context.Context, slug string) (models.Group, error)
	GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Group, error)
}

// Comments lists a post's comments oldest first.
type Comments interface {
	ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
}

// FollowGraph answers the two questions the feed needs from the follow graph.
type FollowGraph interface {
	IsFollowing(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error)
	Following(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Item is a post with its author and group resolved for display.
type Item struct {
	models.Post
	Author models.User
	Group  *models.Group
}

// Result is one composed feed page.
type Result struct {
	Scope Scope
	Items []Item
	Page  paging.Page

	Group *models.Group // set for group scope

	Author    *models.User // set for author scope
	PostCount int64        // author scope: total posts by the author
	Following bool         // author scope: requester follows the author
}

// Composer builds feed pages from the entity store.
type Composer struct {
	posts    Posts
	users    Users
	groups   Groups
	comments Comments
	follows  FollowGraph
}

func NewComposer(posts Posts, users Users, groups Groups, comments Comments, follows FollowGraph) *Composer {
	return &Composer{
		posts:    posts,
		users:    users,
		groups:   groups,
		comments: comments,
		follows:  follows,
	}
}

// Compose returns the requested page of the scope's posts, newest first.
// requester is primitive.NilObjectID for anonymous visitors. Out-of-range
// page numbers are clamped to the first or last page.
func (c *Composer) Compose(ctx context.Context, scope Scope, requester primitive.ObjectID, page int) (Result, error) {
	res := Result{Scope: scope}
	var filter models.PostFilter

	switch scope.Kind {
	case KindGlobal:

	case KindGroup:
		g, err := c.groups.GetBySlug(ctx, scope.Slug)
		if err != nil {
			return Result{}, notFound(err, "group %q", scope.Slug)
		}
		res.Group = &g
		filter.GroupID = &g.ID

	case KindAuthor:
		u, err := c.users.GetByUsername(ctx, scope.Username)
		if err != nil {
			return Result{}, notFound(err, "author %q", scope.Username)
		}
		res.Author = &u
		filter.AuthorID = &u.ID
		if !requester.IsZero() {
			following, err := c.follows.IsFollowing(ctx, requester, u.ID)
			if err != nil {
				return Result{}, fmt.Errorf("feed: following flag: %w", err)
			}
			res.Following = following
		}

	case KindFollowed:
		if requester.IsZero() {
			return Result{}, ErrUnauthorized
		}
		ids, err := c.follows.Following(ctx, requester)
		if err != nil {
			return Result{}, fmt.Errorf("feed: followed authors: %w", err)
		}
		if ids == nil {
			ids = []primitive.ObjectID{}
		}
		filter.AuthorIDs = ids

	default:
		return Result{}, fmt.Errorf("feed: unknown scope %v", scope.Kind)
	}

	total, err := c.countPosts(ctx, filter)
	if err != nil {
		return Result{}, err
	}
	res.Page = paging.Compute(page, total)
	if scope.Kind == KindAuthor {
		res.PostCount = total
	}

	if total == 0 {
		res.Items = []Item{}
		return res, nil
	}

	posts, err := c.posts.List(ctx, filter, res.Page.Offset(), res.Page.Limit())
	if err != nil {
		return Result{}, fmt.Errorf("feed: list posts: %w", err)
	}
	res.Items, err = c.resolve(ctx, posts)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (c *Composer) countPosts(ctx context.Context, f models.PostFilter) (int64, error) {
	// An empty follow set matches nothing; skip the round-trip.
	if f.AuthorIDs != nil && len(f.AuthorIDs) == 0 {
		return 0, nil
	}
	n, err := c.posts.Count(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("feed: count posts: %w", err)
	}
	return n, nil
}

// resolve attaches authors and groups to posts with one lookup per collection.
func (c *Composer) resolve(ctx context.Context, posts []models.Post) ([]Item, error) {
	authorIDs := make([]primitive.ObjectID, 0, len(posts))
	groupIDs := make([]primitive.ObjectID, 0, len(posts))
	seenA := make(map[primitive.ObjectID]bool, len(posts))
	seenG := make(map[primitive.ObjectID]bool, len(posts))
	for _, p := range posts {
		if !seenA[p.AuthorID] {
			seenA[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
		if p.GroupID != nil && !seenG[*p.GroupID] {
			seenG[*p.GroupID] = true
			groupIDs = append(groupIDs, *p.GroupID)
		}
	}

	authors, err := c.users.GetManyByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("feed: load authors: %w", err)
	}
	groups, err := c.groups.GetManyByIDs(ctx, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("feed: load groups: %w", err)
	}

	items := make([]Item, 0, len(posts))
	for _, p := range posts {
		it := Item{Post: p, Author: authors[p.AuthorID]}
		if p.GroupID != nil {
			if g, ok := groups[*p.GroupID]; ok {
				g := g
				it.Group = &g
			}
		}
		items = append(items, it)
	}
	return items, nil
}

// notFound maps a store miss to ErrNotFound and passes other errors through.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
	}
	return fmt.Errorf("feed: lookup "+format+": %w", append(args, err)...)
}
