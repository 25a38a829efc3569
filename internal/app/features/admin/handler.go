// internal/app/features/admin/handler.go
package admin

import (
	uierrors "github.com/dalemusser/postboard/internal/app/features/errors"
	commentstore "github.com/dalemusser/postboard/internal/app/store/comments"
	followstore "github.com/dalemusser/postboard/internal/app/store/follows"
	poststore "github.com/dalemusser/postboard/internal/app/store/posts"
	userstore "github.com/dalemusser/postboard/internal/app/store/users"
	"github.com/dalemusser/postboard/internal/app/system/imagestore"
	"github.com/dalemusser/postboard/internal/app/system/pagecache"
	"github.com/dalemusser/postboard/internal/app/system/render"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves user administration.
type Handler struct {
	DB       *mongo.Database
	Users    *userstore.Store
	Posts    *poststore.Store
	Comments *commentstore.Store
	Follows  *followstore.Store
	Images   imagestore.Store // may be nil
	Cache    *pagecache.Cache // may be nil

	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
	Render render.Func
}

// NewHandler constructs an admin Handler bound to db.
func NewHandler(db *mongo.Database, images imagestore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Users:    userstore.New(db),
		Posts:    poststore.New(db),
		Comments: commentstore.New(db),
		Follows:  followstore.New(db),
		Images:   images,
		ErrLog:   errLog,
		Log:      logger,
		Render:   render.Templates,
	}
}
