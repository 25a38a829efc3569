package login

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	uierrors "github.com/dalemusser/postboard/internal/app/features/errors"
	"github.com/dalemusser/postboard/internal/app/system/auth"
	"github.com/dalemusser/postboard/internal/app/system/render"
	"github.com/dalemusser/postboard/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.Fixtures, *render.Capture) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "t", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	errLog := uierrors.NewErrorLogger(logger)
	h := NewHandler(db, sm, errLog, logger)
	c := &render.Capture{}
	h.Render = c.Func()
	errLog.Render = c.Func()
	return h, testutil.NewFixtures(t, db), c
}

func post(t *testing.T, h *Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	Routes(h, nil).ServeHTTP(rec, testutil.NewFormRequest("/", form))
	return rec
}

func TestServeLogin_KeepsReturn(t *testing.T) {
	h, _, c := newTestHandler(t)

	rec := httptest.NewRecorder()
	Routes(h, nil).ServeHTTP(rec, httptest.NewRequest("GET", "/?return=%2Fcreate", nil))

	if rec.Code != http.StatusOK || c.Name != "login" {
		t.Fatalf("status=%d template=%q", rec.Code, c.Name)
	}
	if d := c.Data.(loginFormData); d.ReturnURL != "/create" {
		t.Errorf("ReturnURL = %q", d.ReturnURL)
	}
}

func TestHandleLoginPost_Success(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateUser(ctx, "leo")

	rec := post(t, h, url.Values{
		"username": {"LEO"},
		"password": {testutil.TestPassword},
		"return":   {"/create"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/create" {
		t.Errorf("Location = %q", loc)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}
}

func TestHandleLoginPost_UnsafeReturnFallsBackToIndex(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateUser(ctx, "leo")

	rec := post(t, h, url.Values{
		"username": {"leo"},
		"password": {testutil.TestPassword},
		"return":   {"https://evil.example/"},
	})
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

func TestHandleLoginPost_Failures(t *testing.T) {
	h, fx, c := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateUser(ctx, "leo")

	tests := []struct {
		name string
		form url.Values
	}{
		{"empty", url.Values{}},
		{"wrong password", url.Values{"username": {"leo"}, "password": {"nope"}}},
		{"unknown user", url.Values{"username": {"anna"}, "password": {testutil.TestPassword}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(t, h, tc.form)
			if rec.Code != http.StatusOK || c.Name != "login" {
				t.Fatalf("status=%d template=%q", rec.Code, c.Name)
			}
			if d := c.Data.(loginFormData); d.Error == "" {
				t.Error("expected an error message")
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Error("failed login must not set a session cookie")
			}
		})
	}
}
