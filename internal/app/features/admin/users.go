// internal/app/features/admin/users.go
package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/app/system/paging"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/app/system/viewdata"
	"github.com/dalemusser/postboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const usersPerPage = 25

type userRow struct {
	ID       string
	Username string
	Name     string
	Role     string
	RoleName string
	Joined   string
	IsSelf   bool
}

type usersData struct {
	viewdata.BaseVM
	Users []userRow
	Page  paging.Page
	Error string
}

// ServeUsers lists accounts.
// GET /admin/users
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	h.renderUsers(w, r, http.StatusOK, "")
}

func (h *Handler) renderUsers(w http.ResponseWriter, r *http.Request, status int, msg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	total, err := h.Users.Count(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count users failed", err, "We could not load the users.", "/")
		return
	}
	page := paging.ComputeWithSize(paging.ParsePage(r), total, usersPerPage)
	users, err := h.Users.List(ctx, page.Offset(), page.Limit())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list users failed", err, "We could not load the users.", "/")
		return
	}

	me := auth.UserID(r)
	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow{
			ID:       u.ID.Hex(),
			Username: u.Username,
			Name:     u.DisplayName(),
			Role:     u.Role,
			RoleName: roleLabel(u.Role),
			Joined:   u.CreatedAt.Format("2 Jan 2006"),
			IsSelf:   u.ID == me,
		})
	}

	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	h.Render(w, r, "admin_users", usersData{
		BaseVM: viewdata.NewBaseVM(r, "Users", "/"),
		Users:  rows,
		Page:   page,
		Error:  msg,
	})
}

// HandleDeleteUser removes an account and everything it authored.
// POST /admin/users/{id}/delete
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	uid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.NotFound(w, r)
		return
	}

	// Guard: an admin cannot delete their own account.
	if uid == auth.UserID(r) {
		h.renderUsers(w, r, http.StatusBadRequest, "You can't delete your own account.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete user")
	defer cancel()

	res, err := h.DeleteUser(ctx, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.NotFound(w, r)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete user failed", err, "Delete failed.", "/admin/users")
		return
	}

	h.Log.Info("user deleted",
		zap.String("user_id", uid.Hex()),
		zap.String("username", res.Username),
		zap.Int64("posts", res.Posts),
		zap.Int64("comments", res.Comments),
		zap.Int64("follows", res.Follows))
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

func roleLabel(role string) string {
	if role == models.RoleAdmin {
		return "Administrator"
	}
	return "User"
}
