// internal/app/features/posts/types.go
package posts

import (
	"html/template"
	"time"

	"github.com/dalemusser/postboard/internal/app/system/feed"
	"github.com/dalemusser/postboard/internal/app/system/paging"
	"github.com/dalemusser/postboard/internal/app/system/textclean"
	"github.com/dalemusser/postboard/internal/app/system/viewdata"
	"github.com/dalemusser/postboard/internal/domain/models"
)

const timeLayout = "2 Jan 2006 15:04"

/*─────────────────────────────────────────────────────────────────────────────*
| View models                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// postVM is what the post_card template reads.
type postVM struct {
	ID             string
	Text           string
	Body           template.HTML // Text with line breaks
	AuthorUsername string
	AuthorName     string
	Created        string
	GroupSlug      string
	GroupTitle     string
	ImageURL       string
	CanEdit        bool
}

type authorVM struct {
	Username  string
	Name      string
	PostCount int64
	Following bool
	CanFollow bool // signed in and not looking at own profile
}

type feedData struct {
	viewdata.BaseVM
	Heading     string
	Description string
	EmptyText   string
	Posts       []postVM
	Page        paging.Page
	Author      *authorVM
}

type commentVM struct {
	AuthorUsername string
	AuthorName     string
	Text           string
	Body           template.HTML
	Created        string
}

type detailData struct {
	viewdata.BaseVM
	Post            postVM
	AuthorPostCount int64
	Comments        []commentVM
}

type groupOption struct {
	ID       string
	Title    string
	Selected bool
}

type formData struct {
	viewdata.BaseVM
	IsEdit   bool
	PostID   string
	Text     string
	Groups   []groupOption
	ImageURL string
	Errors   map[string]string
}

/*─────────────────────────────────────────────────────────────────────────────*
| Builders                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timeLayout)
}

// card converts a feed item. viewer is the signed-in user's hex ID or "".
func (h *Handler) card(it feed.Item, viewer string) postVM {
	vm := postVM{
		ID:             it.ID.Hex(),
		Text:           it.Text,
		Body:           textclean.Linebreaks(it.Text),
		AuthorUsername: it.Author.Username,
		AuthorName:     it.Author.DisplayName(),
		Created:        formatTime(it.CreatedAt),
		CanEdit:        viewer != "" && viewer == it.AuthorID.Hex(),
	}
	if it.Group != nil {
		vm.GroupSlug = it.Group.Slug
		vm.GroupTitle = it.Group.Title
	}
	if it.ImagePath != "" && h.Images != nil {
		vm.ImageURL = h.Images.URL(it.ImagePath)
	}
	return vm
}

func (h *Handler) cards(items []feed.Item, viewer string) []postVM {
	out := make([]postVM, 0, len(items))
	for _, it := range items {
		out = append(out, h.card(it, viewer))
	}
	return out
}

func groupOptions(groups []models.Group, selected string) []groupOption {
	out := make([]groupOption, 0, len(groups))
	for _, g := range groups {
		id := g.ID.Hex()
		out = append(out, groupOption{ID: id, Title: g.Title, Selected: id == selected})
	}
	return out
}
