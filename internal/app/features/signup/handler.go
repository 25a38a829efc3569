// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/postboard/internal/app/features/errors"
	userstore "github.com/dalemusser/postboard/internal/app/store/users"
	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/app/system/inputval"
	"github.com/dalemusser/postboard/internal/app/system/render"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/app/system/viewdata"
	"github.com/dalemusser/postboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
	Render     render.Func
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Log:        logger,
		Render:     render.Templates,
	}
}

// signupInput defines validation rules for the sign-up form.
type signupInput struct {
	FullName  string `form:"full_name" validate:"max=150" label:"Full name"`
	Username  string `form:"username" validate:"required,max=150,username" label:"Username"`
	Email     string `form:"email" validate:"omitempty,email,max=254" label:"Email"`
	Password1 string `form:"password1" validate:"required,min=8,max=128" label:"Password"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1" label:"Password confirmation"`
}

type signupData struct {
	viewdata.BaseVM
	FullName string
	Username string
	Email    string
	Errors   map[string]string
}

// ServeSignup renders the sign-up page.
// GET /auth/signup
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.Render(w, r, "signup", signupData{
		BaseVM: viewdata.NewBaseVM(r, "Sign up", "/"),
	})
}

// HandleSignup creates the account and signs the new user in.
// POST /auth/signup
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/auth/signup")
		return
	}

	input := signupInput{
		FullName:  strings.TrimSpace(r.FormValue("full_name")),
		Username:  strings.TrimSpace(r.FormValue("username")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password1: r.FormValue("password1"),
		Password2: r.FormValue("password2"),
	}
	if result := inputval.Validate(input); result.HasErrors() {
		h.reRender(w, r, input, result.Errors)
		return
	}

	hash, err := auth.HashPassword(input.Password1)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "We could not create your account.", "/auth/signup")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Username:     input.Username,
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	})
	if errors.Is(err, userstore.ErrDuplicateUsername) {
		h.reRender(w, r, input, map[string]string{"username": "A user with that username already exists."})
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create user failed", err, "We could not create your account.", "/auth/signup")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Name:     u.DisplayName(),
		Role:     u.Role,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "sign in failed", err, "Your account was created; please log in.", "/auth/login")
		return
	}

	h.Log.Info("user signed up", zap.String("user_id", u.ID.Hex()), zap.String("username", u.Username))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) reRender(w http.ResponseWriter, r *http.Request, in signupInput, errs map[string]string) {
	render.WithStatus(h.Render, http.StatusBadRequest)(w, r, "signup", signupData{
		BaseVM:   viewdata.NewBaseVM(r, "Sign up", "/"),
		FullName: in.FullName,
		Username: in.Username,
		Email:    in.Email,
		Errors:   errs,
	})
}
