// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/postboard/internal/app/features/errors"
	userstore "github.com/dalemusser/postboard/internal/app/store/users"
	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/app/system/render"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Render     render.Func
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Render:     render.Templates,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Username  string
	ReturnURL string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/login                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Log in", "/"),
		ReturnURL: query.Get(r, "return"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/login                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/auth/login")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	ret := r.FormValue("return")

	if username == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your username and password.", username, ret)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogServerError(w, r, "database error looking up user", err, "A database error occurred.", "/auth/login")
		return
	}
	// Same message for unknown users and wrong passwords.
	if err != nil || auth.CheckPassword(u.PasswordHash, password) != nil {
		h.Log.Info("login failed", zap.String("username", username))
		h.renderFormWithError(w, r, "Please enter a correct username and password.", username, ret)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Name:     u.DisplayName(),
		Role:     u.Role,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "sign in failed", err, "We could not sign you in.", "/auth/login")
		return
	}

	h.Log.Info("login", zap.String("user_id", u.ID.Hex()), zap.String("username", u.Username))
	http.Redirect(w, r, auth.SafeReturn(ret, "/"), http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, username, ret string) {
	h.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Log in", "/"),
		Error:     msg,
		Username:  username,
		ReturnURL: ret,
	})
}
