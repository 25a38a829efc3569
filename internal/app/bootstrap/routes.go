// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"time"

	adminfeature "github.com/dalemusser/postboard/internal/app/features/admin"
	errorsfeature "github.com/dalemusser/postboard/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/postboard/internal/app/features/groups"
	healthfeature "github.com/dalemusser/postboard/internal/app/features/health"
	loginfeature "github.com/dalemusser/postboard/internal/app/features/login"
	logoutfeature "github.com/dalemusser/postboard/internal/app/features/logout"
	passwordfeature "github.com/dalemusser/postboard/internal/app/features/password"
	postsfeature "github.com/dalemusser/postboard/internal/app/features/posts"
	signupfeature "github.com/dalemusser/postboard/internal/app/features/signup"
	userstore "github.com/dalemusser/postboard/internal/app/store/users"
	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/app/system/follow"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisPinger adapts a Redis client to the health check.
type redisPinger struct{ c redis.UniversalClient }

func (p redisPinger) Ping(ctx context.Context) error { return p.c.Ping(ctx).Err() }

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Postboard initializes the template
// engine, applies session and CSRF middleware, and mounts the blog, account
// and administration features.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.PostboardMongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Role changes and deleted accounts take effect on the next request.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()

	// Operational endpoints sit outside CSRF and sessions.
	var cachePinger healthfeature.Pinger
	if deps.Redis != nil {
		cachePinger = redisPinger{c: deps.Redis}
	}
	healthHandler := healthfeature.NewHandler(deps.PostboardMongoClient, cachePinger, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))
	if deps.LocalImages != nil {
		r.Handle(deps.LocalImages.Prefix()+"/*", deps.LocalImages.Handler())
	}

	r.Group(func(app chi.Router) {
		if !secure {
			// gorilla/csrf assumes TLS unless told otherwise.
			app.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
				})
			})
		}
		app.Use(csrf.Protect(
			[]byte(appCfg.CSRFKey),
			csrf.Secure(secure),
			csrf.Path("/"),
			csrf.ErrorHandler(http.HandlerFunc(errorsHandler.Forbidden)),
		))

		// Loads SessionUser into context if logged in.
		app.Use(sessionMgr.LoadSessionUser)

		var limit func(http.Handler) http.Handler
		if appCfg.LoginRateLimit > 0 {
			limit = httprate.LimitByIP(appCfg.LoginRateLimit, time.Minute)
		}

		// Accounts
		loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, logger)
		app.Mount("/auth/login", loginfeature.Routes(loginHandler, limit))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
		app.Mount("/auth/logout", logoutfeature.Routes(logoutHandler))

		signupHandler := signupfeature.NewHandler(db, sessionMgr, errLog, logger)
		app.Mount("/auth/signup", signupfeature.Routes(signupHandler, limit))

		passwordHandler := passwordfeature.NewHandler(db, errLog, logger)
		app.Mount("/auth/password_change", passwordfeature.Routes(passwordHandler, sessionMgr))

		// Error pages
		app.Get("/forbidden", errorsHandler.Forbidden)
		app.NotFound(errorsHandler.NotFound)

		// Administration
		groupsHandler := groupsfeature.NewHandler(db, errLog, logger)
		groupsHandler.Cache = deps.Cache
		app.Mount("/admin/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

		adminHandler := adminfeature.NewHandler(db, deps.Images, errLog, logger)
		adminHandler.Cache = deps.Cache
		app.Mount("/admin/users", adminfeature.Routes(adminHandler, sessionMgr))

		// Feeds, posts, comments and follows
		postsHandler := postsfeature.NewHandler(db, deps.Images, follow.Policy{}, errLog, logger)
		app.Mount("/", postsfeature.Routes(postsHandler, sessionMgr, deps.Cache))
	})

	return r, nil
}
