// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/postboard/internal/app/system/render"
	"github.com/dalemusser/postboard/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures and shows the user a friendly page.
type ErrorLogger struct {
	Log    *zap.Logger
	Render render.Func
}

// NewErrorLogger constructs an ErrorLogger rendering through the template engine.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger, Render: render.Templates}
}

func (e *ErrorLogger) page(w http.ResponseWriter, r *http.Request, status int, title, userMsg, backURL string) {
	vm := viewdata.NewBaseVM(r, title, "/")
	if backURL != "" {
		vm.BackURL = backURL
	}
	render.WithStatus(e.Render, status)(w, r, "error_message", pageData{BaseVM: vm, Message: userMsg})
}

// LogServerError logs err at error level with request context and renders a
// 500 page showing userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	if userMsg == "" {
		userMsg = "Something went wrong. Please try again."
	}
	e.page(w, r, http.StatusInternalServerError, "Server error", userMsg, backURL)
}

// LogBadRequest logs at warn level and renders a 400 page showing userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Warn(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	e.page(w, r, http.StatusBadRequest, "Bad request", userMsg, backURL)
}

// NotFound renders the 404 page.
func (e *ErrorLogger) NotFound(w http.ResponseWriter, r *http.Request) {
	(&Handler{Render: e.Render}).NotFound(w, r)
}
