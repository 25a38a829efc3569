package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/postboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T

	clock time.Time
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t, clock: time.Now().UTC().Truncate(time.Millisecond)}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// tick returns a strictly increasing timestamp so posts created in sequence
// have distinct creation times.
func (f *Fixtures) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

// TestPassword is the password every fixture user is created with.
const TestPassword = "correct-horse-battery"

var testHash = func() string {
	b, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(b)
}()

// CreateUser inserts a user with role "user" and TestPassword.
func (f *Fixtures) CreateUser(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.createUser(ctx, username, models.RoleUser)
}

// CreateAdmin inserts a user with role "admin".
func (f *Fixtures) CreateAdmin(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.createUser(ctx, username, models.RoleAdmin)
}

func (f *Fixtures) createUser(ctx context.Context, username, role string) models.User {
	f.t.Helper()
	now := f.tick()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		FullName:     username + " Tester",
		PasswordHash: testHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateGroup inserts a group.
func (f *Fixtures) CreateGroup(ctx context.Context, title, slug string) models.Group {
	f.t.Helper()
	g := models.Group{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Slug:        slug,
		Description: "About " + title,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// CreatePost inserts a post by author, optionally in group.
func (f *Fixtures) CreatePost(ctx context.Context, author models.User, text string, group *models.Group) models.Post {
	f.t.Helper()
	now := f.tick()
	p := models.Post{
		ID:        primitive.NewObjectID(),
		Text:      text,
		AuthorID:  author.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if group != nil {
		gid := group.ID
		p.GroupID = &gid
	}
	if _, err := f.db.Collection("posts").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test post: %v", err)
	}
	return p
}

// CreateComment inserts a comment on post by author.
func (f *Fixtures) CreateComment(ctx context.Context, post models.Post, author models.User, text string) models.Comment {
	f.t.Helper()
	c := models.Comment{
		ID:        primitive.NewObjectID(),
		PostID:    post.ID,
		AuthorID:  author.ID,
		Text:      text,
		CreatedAt: f.tick(),
	}
	if _, err := f.db.Collection("comments").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test comment: %v", err)
	}
	return c
}

// Follow inserts a follow edge from user to author.
func (f *Fixtures) Follow(ctx context.Context, user, author models.User) {
	f.t.Helper()
	_, err := f.db.Collection("follows").InsertOne(ctx, models.Follow{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID,
		AuthorID:  author.ID,
		CreatedAt: f.tick(),
	})
	if err != nil {
		f.t.Fatalf("failed to create test follow: %v", err)
	}
}
