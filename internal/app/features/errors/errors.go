// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/postboard/internal/app/system/render"
	"github.com/dalemusser/postboard/internal/app/system/viewdata"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Message string
}

// Handler serves the standalone error pages.
type Handler struct {
	Render render.Func
}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{Render: render.Templates}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	render.WithStatus(h.Render, http.StatusForbidden)(w, r, "error_forbidden", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Access denied", "/"),
		Message: "You don't have permission to view this page.",
	})
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	render.WithStatus(h.Render, http.StatusNotFound)(w, r, "error_not_found", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Page not found", "/"),
		Message: "The page you were looking for does not exist.",
	})
}
