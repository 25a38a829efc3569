// internal/app/features/groups/handler.go
package groups

import (
	uierrors "github.com/dalemusser/postboard/internal/app/features/errors"
	groupstore "github.com/dalemusser/postboard/internal/app/store/groups"
	poststore "github.com/dalemusser/postboard/internal/app/store/posts"
	"github.com/dalemusser/postboard/internal/app/system/pagecache"
	"github.com/dalemusser/postboard/internal/app/system/render"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the dependency container for group administration.
// Deleting a group detaches its posts inside a transaction, so the handler
// keeps the database alongside the stores.
type Handler struct {
	DB     *mongo.Database
	Groups *groupstore.Store
	Posts  *poststore.Store
	Cache  *pagecache.Cache // optional; flushed after a delete
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
	Render render.Func
}

// NewHandler constructs a groups Handler. It is called from BuildHandler,
// where the database and logger are already initialized.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Groups: groupstore.New(db),
		Posts:  poststore.New(db),
		ErrLog: errLog,
		Log:    logger,
		Render: render.Templates,
	}
}
