// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/postboard/internal/app/resources"
	userstore "github.com/dalemusser/postboard/internal/app/store/users"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/app/system/viewdata"
	"github.com/dalemusser/postboard/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	viewdata.SetSiteName(appCfg.SiteName)
	resources.LoadSharedTemplates()

	if err := ensureAdmin(ctx, deps, appCfg.AdminUsername, logger); err != nil {
		return err
	}

	if deps.Janitor != nil {
		deps.Janitor.Start()
	}
	return nil
}

// ensureAdmin promotes the configured user to the admin role. An unknown
// username is logged and skipped so a fresh install can start before the
// account exists.
func ensureAdmin(ctx context.Context, deps DBDeps, username string, logger *zap.Logger) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	users := userstore.New(deps.PostboardMongoDatabase)
	u, err := users.GetByUsername(ctx, username)
	if errors.Is(err, mongo.ErrNoDocuments) {
		logger.Warn("admin_username not found; sign up first and restart", zap.String("username", username))
		return nil
	}
	if err != nil {
		return err
	}
	if u.Role == models.RoleAdmin {
		return nil
	}
	if err := users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return err
	}
	logger.Info("promoted user to admin", zap.String("username", u.Username), zap.String("user_id", u.ID.Hex()))
	return nil
}
