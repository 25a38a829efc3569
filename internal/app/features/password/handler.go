// internal/app/features/password/handler.go
package password

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/postboard/internal/app/features/errors"
	userstore "github.com/dalemusser/postboard/internal/app/store/users"
	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/app/system/inputval"
	"github.com/dalemusser/postboard/internal/app/system/render"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users  *userstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
	Render render.Func
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  userstore.New(db),
		ErrLog: errLog,
		Log:    logger,
		Render: render.Templates,
	}
}

type changeInput struct {
	OldPassword  string `form:"old_password" validate:"required" label:"Old password"`
	NewPassword1 string `form:"new_password1" validate:"required,min=8,max=128,nefield=OldPassword" label:"New password"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1" label:"New password confirmation"`
}

type changeData struct {
	viewdata.BaseVM
	Errors map[string]string
}

// ServeChange renders the change-password form.
// GET /auth/password_change
func (h *Handler) ServeChange(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, "password_change", changeData{
		BaseVM: viewdata.NewBaseVM(r, "Change password", "/"),
	})
}

// HandleChange verifies the old password and stores the new one.
// POST /auth/password_change
func (h *Handler) HandleChange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/auth/password_change")
		return
	}

	in := changeInput{
		OldPassword:  r.FormValue("old_password"),
		NewPassword1: r.FormValue("new_password1"),
		NewPassword2: r.FormValue("new_password2"),
	}
	if result := inputval.Validate(in); result.HasErrors() {
		h.reRender(w, r, result.Errors)
		return
	}

	uid := auth.UserID(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		http.Redirect(w, r, auth.LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "A database error occurred.", "/")
		return
	}
	if auth.CheckPassword(u.PasswordHash, in.OldPassword) != nil {
		h.reRender(w, r, map[string]string{"old_password": "Your old password was entered incorrectly."})
		return
	}

	hash, err := auth.HashPassword(in.NewPassword1)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "We could not change your password.", "/auth/password_change")
		return
	}
	if err := h.Users.UpdatePassword(ctx, uid, hash); err != nil {
		h.ErrLog.LogServerError(w, r, "update password failed", err, "We could not change your password.", "/auth/password_change")
		return
	}

	h.Log.Info("password changed", zap.String("user_id", uid.Hex()))
	http.Redirect(w, r, "/auth/password_change/done", http.StatusSeeOther)
}

// ServeDone confirms the change.
// GET /auth/password_change/done
func (h *Handler) ServeDone(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, "password_change_done", viewdata.NewBaseVM(r, "Password changed", "/"))
}

func (h *Handler) reRender(w http.ResponseWriter, r *http.Request, errs map[string]string) {
	render.WithStatus(h.Render, http.StatusBadRequest)(w, r, "password_change", changeData{
		BaseVM: viewdata.NewBaseVM(r, "Change password", "/"),
		Errors: errs,
	})
}
