// internal/app/features/posts/handler.go
package posts

import (
	"context"

	uierrors "github.com/dalemusser/postboard/internal/app/features/errors"
	commentstore "github.com/dalemusser/postboard/internal/app/store/comments"
	followstore "github.com/dalemusser/postboard/internal/app/store/follows"
	groupstore "github.com/dalemusser/postboard/internal/app/store/groups"
	poststore "github.com/dalemusser/postboard/internal/app/store/posts"
	userstore "github.com/dalemusser/postboard/internal/app/store/users"
	"github.com/dalemusser/postboard/internal/app/system/authoring"
	"github.com/dalemusser/postboard/internal/app/system/feed"
	"github.com/dalemusser/postboard/internal/app/system/follow"
	"github.com/dalemusser/postboard/internal/app/system/imagestore"
	"github.com/dalemusser/postboard/internal/app/system/render"
	"github.com/dalemusser/postboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// PostReader loads a single post for the edit form.
type PostReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Post, error)
}

// UserLookup resolves the author named in a follow/unfollow URL.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

// GroupLister supplies the group choices on the post form.
type GroupLister interface {
	List(ctx context.Context) ([]models.Group, error)
}

// Handler serves the feeds, post pages, authoring forms and follow actions.
type Handler struct {
	Feed   *feed.Composer
	Follow *follow.Graph
	Author *authoring.Service

	Posts  PostReader
	Users  UserLookup
	Groups GroupLister
	Images imagestore.Store

	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
	Render render.Func
}

// NewHandler wires the feature to the Mongo-backed stores.
func NewHandler(db *mongo.Database, images imagestore.Store, policy follow.Policy, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	posts := poststore.New(db)
	users := userstore.New(db)
	groups := groupstore.New(db)
	comments := commentstore.New(db)
	graph := follow.New(followstore.New(db), policy)

	return &Handler{
		Feed:   feed.NewComposer(posts, users, groups, comments, graph),
		Follow: graph,
		Author: authoring.New(posts, comments, groups, images, logger),
		Posts:  posts,
		Users:  users,
		Groups: groups,
		Images: images,
		ErrLog: errLog,
		Log:    logger,
		Render: render.Templates,
	}
}
