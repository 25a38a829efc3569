// Package render is the seam between handlers and the template engine.
package render

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
)

// Func renders the named page template with data.
type Func func(w http.ResponseWriter, r *http.Request, name string, data any)

// Templates renders through the booted waffle template engine.
func Templates(w http.ResponseWriter, r *http.Request, name string, data any) {
	templates.Render(w, r, name, data)
}

// WithStatus returns a Func that writes status before rendering.
func WithStatus(fn Func, status int) Func {
	return func(w http.ResponseWriter, r *http.Request, name string, data any) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fn(w, r, name, data)
	}
}

// Capture records the last render call. Handlers under test use it in place
// of Templates.
type Capture struct {
	Name  string
	Data  any
	Calls int
}

// Func returns a render.Func that records into c and writes the template
// name as the body.
func (c *Capture) Func() Func {
	return func(w http.ResponseWriter, r *http.Request, name string, data any) {
		c.Name = name
		c.Data = data
		c.Calls++
		_, _ = w.Write([]byte(name))
	}
}
