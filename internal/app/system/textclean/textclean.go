// Package textclean normalizes user-entered plain text and renders it for
// display.
//
// Text is stored as typed. Escaping happens on output, in Linebreaks or in
// the template engine.
package textclean

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// breaks admits <br> and nothing else.
var breaks = bluemonday.NewPolicy().AllowElements("br")

// Normalize converts CRLF and CR line endings to LF and trims surrounding
// whitespace. Everything else is kept as typed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// IsBlank reports whether s holds only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Linebreaks renders s as HTML: the text escaped, each newline preceded by
// a <br>.
func Linebreaks(s string) template.HTML {
	s = html.EscapeString(Normalize(s))
	s = strings.ReplaceAll(s, "\n", "<br>\n")
	return template.HTML(breaks.Sanitize(s))
}
