// internal/app/features/posts/detail.go
package posts

import (
	"context"
	"net/http"

	"github.com/dalemusser/postboard/internal/app/system/textclean"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
)

// ServeDetail renders one post with its comments.
// GET /posts/{id}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.ErrLog.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.Feed.Detail(ctx, id)
	if err != nil {
		h.feedError(w, r, err, "load post detail")
		return
	}

	comments := make([]commentVM, 0, len(d.Comments))
	for _, c := range d.Comments {
		comments = append(comments, commentVM{
			AuthorUsername: c.Author.Username,
			AuthorName:     c.Author.DisplayName(),
			Text:           c.Text,
			Body:           textclean.Linebreaks(c.Text),
			Created:        formatTime(c.CreatedAt),
		})
	}

	title := d.Text
	if rs := []rune(title); len(rs) > 30 {
		title = string(rs[:30])
	}

	h.Render(w, r, "post_detail", detailData{
		BaseVM:          viewdata.NewBaseVM(r, title, "/"),
		Post:            h.card(d.Item, viewerHex(r)),
		AuthorPostCount: d.PostCount,
		Comments:        comments,
	})
}
