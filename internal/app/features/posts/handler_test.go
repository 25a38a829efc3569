package posts

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	uierrors "github.com/dalemusser/postboard/internal/app/features/errors"
	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/app/system/follow"
	"github.com/dalemusser/postboard/internal/app/system/imagestore"
	"github.com/dalemusser/postboard/internal/app/system/pagecache"
	"github.com/dalemusser/postboard/internal/app/system/render"
	"github.com/dalemusser/postboard/internal/domain/models"
	"github.com/dalemusser/postboard/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	h   *Handler
	fx  *testutil.Fixtures
	db  *mongo.Database
	cap *render.Capture
	sm  *auth.SessionManager
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	images, err := imagestore.NewLocal(t.TempDir(), "/media/posts")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	errLog := uierrors.NewErrorLogger(logger)
	h := NewHandler(db, images, follow.Policy{}, errLog, logger)

	c := &render.Capture{}
	h.Render = c.Func()
	errLog.Render = c.Func()

	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "t", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return &env{h: h, fx: testutil.NewFixtures(t, db), db: db, cap: c, sm: sm}
}

func (e *env) router(cache *pagecache.Cache) chi.Router {
	return Routes(e.h, e.sm, cache)
}

func (e *env) do(t *testing.T, r *http.Request, cache *pagecache.Cache) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router(cache).ServeHTTP(rec, r)
	return rec
}

func (e *env) feed(t *testing.T) feedData {
	t.Helper()
	d, ok := e.cap.Data.(feedData)
	if !ok {
		t.Fatalf("rendered %q with %T, want feedData", e.cap.Name, e.cap.Data)
	}
	return d
}

func TestServeIndex_Pagination(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leo := e.fx.CreateUser(ctx, "leo")
	for i := 0; i < 13; i++ {
		e.fx.CreatePost(ctx, leo, fmt.Sprintf("post %d", i), nil)
	}

	tests := []struct {
		query     string
		wantPage  int
		wantCount int
		wantFirst string
	}{
		{"", 1, 10, "post 12"},
		{"?page=2", 2, 3, "post 2"},
		{"?page=3", 2, 3, "post 2"},
		{"?page=abc", 1, 10, "post 12"},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			rec := e.do(t, httptest.NewRequest("GET", "/"+tc.query, nil), nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			d := e.feed(t)
			if d.Page.Number != tc.wantPage || len(d.Posts) != tc.wantCount {
				t.Errorf("page %d with %d posts, want page %d with %d", d.Page.Number, len(d.Posts), tc.wantPage, tc.wantCount)
			}
			if len(d.Posts) > 0 && d.Posts[0].Text != tc.wantFirst {
				t.Errorf("first post %q, want %q", d.Posts[0].Text, tc.wantFirst)
			}
		})
	}
}

func TestServeGroup(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leo := e.fx.CreateUser(ctx, "leo")
	g := e.fx.CreateGroup(ctx, "Writers", "writers")
	e.fx.CreatePost(ctx, leo, "in group", &g)
	e.fx.CreatePost(ctx, leo, "no group", nil)

	rec := e.do(t, httptest.NewRequest("GET", "/group/writers", nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	d := e.feed(t)
	if d.Heading != "Writers" || len(d.Posts) != 1 || d.Posts[0].Text != "in group" {
		t.Errorf("unexpected group feed %+v", d)
	}
	if d.Posts[0].GroupSlug != "writers" {
		t.Errorf("GroupSlug = %q", d.Posts[0].GroupSlug)
	}

	rec = e.do(t, httptest.NewRequest("GET", "/group/nope", nil), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown slug status = %d, want 404", rec.Code)
	}
}

func TestServeProfile(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leo := e.fx.CreateUser(ctx, "leo")
	anna := e.fx.CreateUser(ctx, "anna")
	e.fx.CreatePost(ctx, leo, "hello", nil)
	e.fx.Follow(ctx, anna, leo)

	req := testutil.WithUser(httptest.NewRequest("GET", "/profile/leo", nil), anna)
	rec := e.do(t, req, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	d := e.feed(t)
	if d.Author == nil {
		t.Fatal("Author not set")
	}
	if d.Author.PostCount != 1 || !d.Author.Following || !d.Author.CanFollow {
		t.Errorf("author = %+v", d.Author)
	}
	if len(d.Posts) != 1 || d.Posts[0].Text != "hello" || d.Posts[0].CanEdit {
		t.Errorf("posts = %+v", d.Posts)
	}

	// Own profile: no follow button, posts editable.
	rec = e.do(t, testutil.WithUser(httptest.NewRequest("GET", "/profile/leo", nil), leo), nil)
	d = e.feed(t)
	if d.Author.CanFollow || !d.Posts[0].CanEdit {
		t.Errorf("own profile author=%+v post=%+v", d.Author, d.Posts[0])
	}

	rec = e.do(t, httptest.NewRequest("GET", "/profile/ghost", nil), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", rec.Code)
	}
}

func TestServeFollowFeed(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leo := e.fx.CreateUser(ctx, "leo")
	anna := e.fx.CreateUser(ctx, "anna")
	ivan := e.fx.CreateUser(ctx, "ivan")
	e.fx.CreatePost(ctx, leo, "from leo", nil)
	e.fx.CreatePost(ctx, ivan, "from ivan", nil)
	e.fx.Follow(ctx, anna, leo)

	rec := e.do(t, testutil.WithUser(httptest.NewRequest("GET", "/follow", nil), anna), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	d := e.feed(t)
	if len(d.Posts) != 1 || d.Posts[0].Text != "from leo" {
		t.Errorf("follow feed = %+v", d.Posts)
	}

	// Anonymous visitors are sent to log in with a return path.
	req := httptest.NewRequest("GET", "/follow", nil)
	req.Header.Set("Accept", "text/html")
	rec = e.do(t, req, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/auth/login?return=%2Ffollow" {
		t.Errorf("anonymous: status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestServeDetail(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leo := e.fx.CreateUser(ctx, "leo")
	anna := e.fx.CreateUser(ctx, "anna")
	p := e.fx.CreatePost(ctx, leo, "hello", nil)
	e.fx.CreatePost(ctx, leo, "second", nil)
	e.fx.CreateComment(ctx, p, anna, "first!")
	e.fx.CreateComment(ctx, p, leo, "thanks")

	rec := e.do(t, httptest.NewRequest("GET", "/posts/"+p.ID.Hex(), nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	d, ok := e.cap.Data.(detailData)
	if !ok {
		t.Fatalf("rendered %T", e.cap.Data)
	}
	if d.Post.Text != "hello" || d.AuthorPostCount != 2 {
		t.Errorf("detail = %+v", d)
	}
	if len(d.Comments) != 2 || d.Comments[0].Text != "first!" || d.Comments[0].AuthorUsername != "anna" {
		t.Errorf("comments = %+v", d.Comments)
	}

	for _, path := range []string{"/posts/000000000000000000000000", "/posts/not-an-id"} {
		if rec := e.do(t, httptest.NewRequest("GET", path, nil), nil); rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestServeDetail_TextShownAsTyped(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leo := e.fx.CreateUser(ctx, "leo")
	p := e.fx.CreatePost(ctx, leo, "use <div>\nfor layout", nil)
	e.fx.CreateComment(ctx, p, leo, "if a<b")

	rec := e.do(t, httptest.NewRequest("GET", "/posts/"+p.ID.Hex(), nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	d, ok := e.cap.Data.(detailData)
	if !ok {
		t.Fatalf("rendered %T, want detailData", e.cap.Data)
	}
	if got := string(d.Post.Body); got != "use &lt;div&gt;<br>\nfor layout" {
		t.Errorf("post body = %q", got)
	}
	if len(d.Comments) != 1 || string(d.Comments[0].Body) != "if a&lt;b" {
		t.Errorf("comments = %+v", d.Comments)
	}
}

func TestHandleCreate(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leo := e.fx.CreateUser(ctx, "leo")
	g := e.fx.CreateGroup(ctx, "Writers", "writers")

	form := url.Values{"text": {"hello world"}, "group": {g.ID.Hex()}}
	rec := e.do(t, testutil.WithUser(testutil.NewFormRequest("/create", form), leo), nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/profile/leo" {
		t.Fatalf("status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}

	var p models.Post
	if err := e.db.Collection("posts").FindOne(ctx, bson.M{"author_id": leo.ID}).Decode(&p); err != nil {
		t.Fatalf("post not stored: %v", err)
	}
	if p.Text != "hello world" || p.GroupID == nil || *p.GroupID != g.ID {
		t.Errorf("stored post = %+v", p)
	}
}

func TestHandleCreate_Invalid(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leo := e.fx.CreateUser(ctx, "leo")

	tests := []struct {
		name  string
		form  url.Values
		field string
	}{
		{"empty text", url.Values{"text": {"   "}}, "text"},
		{"bad group id", url.Values{"text": {"hi"}, "group": {"zzz"}}, "group"},
		{"unknown group", url.Values{"text": {"hi"}, "group": {"000000000000000000000001"}}, "group"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := e.do(t, testutil.WithUser(testutil.NewFormRequest("/create", tc.form), leo), nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			d, ok := e.cap.Data.(formData)
			if !ok || e.cap.Name != "post_form" {
				t.Fatalf("rendered %q with %T", e.cap.Name, e.cap.Data)
			}
			if d.Errors[tc.field] == "" {
				t.Errorf("expected %s error, got %v", tc.field, d.Errors)
			}
		})
	}

	n, _ := e.db.Collection("posts").CountDocuments(ctx, bson.M{})
	if n != 0 {
		t.Errorf("%d posts stored after invalid submissions", n)
	}
}

func TestHandleEdit(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leo := e.fx.CreateUser(ctx, "leo")
	anna := e.fx.CreateUser(ctx, "anna")
	p := e.fx.CreatePost(ctx, leo, "original", nil)
	path := "/posts/" + p.ID.Hex() + "/edit"

	// Someone else is redirected and nothing changes.
	rec := e.do(t, testutil.WithUser(testutil.NewFormRequest(path, url.Values{"text": {"hijacked"}}), anna), nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/posts/"+p.ID.Hex() {
		t.Fatalf("non-owner: status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
	rec = e.do(t, testutil.WithUser(httptest.NewRequest("GET", path, nil), anna), nil)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("non-owner GET status = %d, want redirect", rec.Code)
	}

	var got models.Post
	_ = e.db.Collection("posts").FindOne(ctx, bson.M{"_id": p.ID}).Decode(&got)
	if got.Text != "original" {
		t.Fatalf("non-owner changed text to %q", got.Text)
	}

	// The author can edit.
	rec = e.do(t, testutil.WithUser(testutil.NewFormRequest(path, url.Values{"text": {"revised"}}), leo), nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/posts/"+p.ID.Hex() {
		t.Fatalf("owner: status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
	_ = e.db.Collection("posts").FindOne(ctx, bson.M{"_id": p.ID}).Decode(&got)
	if got.Text != "revised" || got.AuthorID != leo.ID || !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("after edit = %+v", got)
	}

	rec = e.do(t, testutil.WithUser(httptest.NewRequest("GET", path, nil), leo), nil)
	if d, ok := e.cap.Data.(formData); !ok || !d.IsEdit || d.Text != "revised" {
		t.Errorf("edit form data = %+v", e.cap.Data)
	}
}

func TestHandleEdit_OwnershipBeforeForm(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leo := e.fx.CreateUser(ctx, "leo")
	anna := e.fx.CreateUser(ctx, "anna")
	p := e.fx.CreatePost(ctx, leo, "original", nil)
	bad := url.Values{"text": {"hijacked"}, "group": {"not-hex"}}

	path := "/posts/" + p.ID.Hex() + "/edit"
	rec := e.do(t, testutil.WithUser(testutil.NewFormRequest(path, bad), anna), nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/posts/"+p.ID.Hex() {
		t.Errorf("non-owner with bad group: status=%d location=%q rendered=%q",
			rec.Code, rec.Header().Get("Location"), e.cap.Name)
	}
	if e.cap.Name == "post_form" {
		t.Error("edit form rendered for non-owner")
	}

	missing := "/posts/" + primitive.NewObjectID().Hex() + "/edit"
	rec = e.do(t, testutil.WithUser(testutil.NewFormRequest(missing, bad), leo), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown post with bad group: status=%d, want 404", rec.Code)
	}
}

func TestHandleComment(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leo := e.fx.CreateUser(ctx, "leo")
	p := e.fx.CreatePost(ctx, leo, "hello", nil)
	path := "/posts/" + p.ID.Hex() + "/comment"

	for _, text := range []string{"nice post", "   "} {
		rec := e.do(t, testutil.WithUser(testutil.NewFormRequest(path, url.Values{"text": {text}}), leo), nil)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/posts/"+p.ID.Hex() {
			t.Errorf("%q: status=%d location=%q", text, rec.Code, rec.Header().Get("Location"))
		}
	}

	n, _ := e.db.Collection("comments").CountDocuments(ctx, bson.M{"post_id": p.ID})
	if n != 1 {
		t.Errorf("stored %d comments, want 1 (blank one dropped)", n)
	}

	rec := e.do(t, testutil.WithUser(testutil.NewFormRequest("/posts/000000000000000000000000/comment", url.Values{"text": {"x"}}), leo), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown post status = %d, want 404", rec.Code)
	}
}

func TestFollowUnfollow(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leo := e.fx.CreateUser(ctx, "leo")
	anna := e.fx.CreateUser(ctx, "anna")

	get := func(path string, u models.User) *httptest.ResponseRecorder {
		return e.do(t, testutil.WithUser(httptest.NewRequest("GET", path, nil), u), nil)
	}
	edges := func() int64 {
		n, _ := e.db.Collection("follows").CountDocuments(ctx, bson.M{"user_id": anna.ID, "author_id": leo.ID})
		return n
	}

	for i := 0; i < 2; i++ {
		rec := get("/profile/leo/follow", anna)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/profile/leo" {
			t.Fatalf("follow #%d: status=%d location=%q", i+1, rec.Code, rec.Header().Get("Location"))
		}
	}
	if edges() != 1 {
		t.Fatalf("edges = %d, want 1 after repeated follow", edges())
	}

	// Self-follow is a no-op redirect.
	if rec := get("/profile/leo/follow", leo); rec.Code != http.StatusSeeOther {
		t.Errorf("self follow status = %d", rec.Code)
	}
	n, _ := e.db.Collection("follows").CountDocuments(ctx, bson.M{"user_id": leo.ID})
	if n != 0 {
		t.Errorf("self follow stored %d edges", n)
	}

	if rec := get("/profile/leo/unfollow", anna); rec.Code != http.StatusSeeOther {
		t.Fatalf("unfollow status = %d", rec.Code)
	}
	if edges() != 0 {
		t.Errorf("edges = %d after unfollow", edges())
	}
	if rec := get("/profile/leo/unfollow", anna); rec.Code != http.StatusNotFound {
		t.Errorf("second unfollow status = %d, want 404", rec.Code)
	}
	if rec := get("/profile/ghost/follow", anna); rec.Code != http.StatusNotFound {
		t.Errorf("follow unknown user status = %d, want 404", rec.Code)
	}
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func TestIndex_PageCache(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Render post texts so the body reflects the feed.
	e.h.Render = func(w http.ResponseWriter, r *http.Request, name string, data any) {
		for _, p := range data.(feedData).Posts {
			_, _ = io.WriteString(w, p.Text+"\n")
		}
	}

	clk := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := pagecache.New(pagecache.NewMemory(clk.Now), pagecache.DefaultTTL, nil, zap.NewNop())

	leo := e.fx.CreateUser(ctx, "leo")
	e.fx.CreatePost(ctx, leo, "first", nil)

	first := e.do(t, httptest.NewRequest("GET", "/", nil), cache)
	if first.Header().Get("X-Cache") != "MISS" {
		t.Errorf("first X-Cache = %q", first.Header().Get("X-Cache"))
	}

	e.fx.CreatePost(ctx, leo, "second", nil)

	clk.t = clk.t.Add(19 * time.Second)
	cached := e.do(t, httptest.NewRequest("GET", "/", nil), cache)
	if cached.Body.String() != first.Body.String() || cached.Header().Get("X-Cache") != "HIT" {
		t.Errorf("within TTL got %q (%s), want %q", cached.Body.String(), cached.Header().Get("X-Cache"), first.Body.String())
	}

	clk.t = clk.t.Add(2 * time.Second)
	fresh := e.do(t, httptest.NewRequest("GET", "/", nil), cache)
	if fresh.Body.String() != "second\nfirst\n" {
		t.Errorf("after TTL body = %q", fresh.Body.String())
	}

	// Group feeds are never cached.
	e.h.Render = e.cap.Func()
	if rec := e.do(t, httptest.NewRequest("GET", "/group/none", nil), cache); rec.Header().Get("X-Cache") != "" {
		t.Errorf("group feed went through the cache")
	}
}
