// Package authoring creates and edits posts and adds comments.
//
// Operations take the acting user explicitly. Validation failures come back
// as ValidationErrors so handlers can re-render the form with messages.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dalemusser/postboard/internal/app/system/imagestore"
	"github.com/dalemusser/postboard/internal/app/system/textclean"
	"github.com/dalemusser/postboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("authoring: post not found")
	ErrForbidden = errors.New("authoring: not the author")
	ErrAnonymous = errors.New("authoring: author required")
)

// MaxTextLen caps post and comment text, in runes.
const MaxTextLen = 10000

// ValidationErrors maps form field names to messages.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "authoring: invalid input: " + strings.Join(parts, "; ")
}

// Posts is the post side of the entity store.
type Posts interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Post, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, text string, groupID *primitive.ObjectID, imagePath string) error
}

// Comments stores comments.
type Comments interface {
	Create(ctx context.Context, c models.Comment) (models.Comment, error)
}

// Groups checks that a chosen group exists.
type Groups interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
}

// Image is an uploaded file.
type Image struct {
	Filename string
	Body     io.Reader
}

// PostInput is the content of the post form.
type PostInput struct {
	Text       string
	GroupID    *primitive.ObjectID
	Image      *Image
	ClearImage bool // edit only: drop the current image
}

// Service implements post and comment authoring.
type Service struct {
	posts    Posts
	comments Comments
	groups   Groups
	images   imagestore.Store
	log      *zap.Logger
}

func New(posts Posts, comments Comments, groups Groups, images imagestore.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{posts: posts, comments: comments, groups: groups, images: images, log: logger}
}

// CreatePost stores a new post owned by author.
func (s *Service) CreatePost(ctx context.Context, author primitive.ObjectID, in PostInput) (models.Post, error) {
	if author.IsZero() {
		return models.Post{}, ErrAnonymous
	}
	text, verrs := s.validate(ctx, in)
	if len(verrs) > 0 {
		return models.Post{}, verrs
	}

	p := models.Post{
		Text:     text,
		AuthorID: author,
		GroupID:  in.GroupID,
	}
	if in.Image != nil {
		key, err := s.saveImage(ctx, in.Image)
		if err != nil {
			return models.Post{}, err
		}
		p.ImagePath = key
	}

	created, err := s.posts.Create(ctx, p)
	if err != nil {
		s.discardImage(ctx, p.ImagePath)
		return models.Post{}, fmt.Errorf("authoring: create post: %w", err)
	}
	return created, nil
}

// EditPost replaces a post's text, group and image. Only the author may
// edit; the author and creation time never change.
func (s *Service) EditPost(ctx context.Context, editor, postID primitive.ObjectID, in PostInput) (models.Post, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, fmt.Errorf("authoring: load post: %w", err)
	}
	if editor.IsZero() || p.AuthorID != editor {
		return p, ErrForbidden
	}

	text, verrs := s.validate(ctx, in)
	if len(verrs) > 0 {
		return p, verrs
	}

	oldImage := p.ImagePath
	newImage := oldImage
	switch {
	case in.Image != nil:
		key, err := s.saveImage(ctx, in.Image)
		if err != nil {
			return p, err
		}
		newImage = key
	case in.ClearImage:
		newImage = ""
	}

	if err := s.posts.UpdateContent(ctx, p.ID, text, in.GroupID, newImage); err != nil {
		if newImage != oldImage {
			s.discardImage(ctx, newImage)
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, fmt.Errorf("authoring: update post: %w", err)
	}
	if newImage != oldImage {
		s.discardImage(ctx, oldImage)
	}

	p.Text = text
	p.GroupID = in.GroupID
	p.ImagePath = newImage
	return p, nil
}

// AddComment attaches a comment by author to the post.
func (s *Service) AddComment(ctx context.Context, author, postID primitive.ObjectID, text string) (models.Comment, error) {
	if author.IsZero() {
		return models.Comment{}, ErrAnonymous
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("authoring: load post: %w", err)
	}

	clean := textclean.Normalize(text)
	if msg := checkText(clean, "Comment"); msg != "" {
		return models.Comment{}, ValidationErrors{"text": msg}
	}

	c, err := s.comments.Create(ctx, models.Comment{
		PostID:   postID,
		AuthorID: author,
		Text:     clean,
	})
	if err != nil {
		return models.Comment{}, fmt.Errorf("authoring: create comment: %w", err)
	}
	return c, nil
}

func (s *Service) validate(ctx context.Context, in PostInput) (string, ValidationErrors) {
	verrs := ValidationErrors{}
	text := textclean.Normalize(in.Text)
	if msg := checkText(text, "Post text"); msg != "" {
		verrs["text"] = msg
	}
	if in.GroupID != nil {
		if _, err := s.groups.GetByID(ctx, *in.GroupID); err != nil {
			if !errors.Is(err, mongo.ErrNoDocuments) {
				s.log.Warn("group lookup failed", zap.Error(err))
			}
			verrs["group"] = "Select a valid group."
		}
	}
	return text, verrs
}

func checkText(text, label string) string {
	switch {
	case textclean.IsBlank(text):
		return label + " is required."
	case len([]rune(text)) > MaxTextLen:
		return fmt.Sprintf("%s must be at most %d characters.", label, MaxTextLen)
	}
	return ""
}

func (s *Service) saveImage(ctx context.Context, img *Image) (string, error) {
	if s.images == nil {
		return "", ValidationErrors{"image": "Image uploads are disabled."}
	}
	key, err := imagestore.Save(ctx, s.images, img.Filename, img.Body)
	switch {
	case errors.Is(err, imagestore.ErrNotImage):
		return "", ValidationErrors{"image": "Upload a valid image file."}
	case errors.Is(err, imagestore.ErrTooLarge):
		return "", ValidationErrors{"image": "Image must be 5 MB or smaller."}
	case err != nil:
		return "", fmt.Errorf("authoring: save image: %w", err)
	}
	return key, nil
}

// discardImage removes an image that is no longer referenced. Failures are
// logged and otherwise ignored.
func (s *Service) discardImage(ctx context.Context, key string) {
	if key == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.log.Warn("image delete failed", zap.String("key", key), zap.Error(err))
	}
}
