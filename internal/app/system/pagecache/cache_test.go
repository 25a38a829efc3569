package pagecache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

// counting renders a different body on every call.
func counting() (http.Handler, *int) {
	n := 0
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n++
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<p>render %d of %s</p>", n, r.URL.RawQuery)
	}), &n
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestMiddleware_ServesCachedWithinTTL(t *testing.T) {
	clock := newClock()
	metrics := NewMetrics(prometheus.NewRegistry())
	c := New(NewMemory(clock.Now), 20*time.Second, metrics, nil)
	inner, renders := counting()
	h := c.Middleware("global", nil)(inner)

	first := get(h, "/?page=2")
	clock.Advance(19 * time.Second)
	second := get(h, "/?page=2")

	if first.Body.String() != second.Body.String() {
		t.Errorf("bodies differ within TTL:\n%s\n%s", first.Body, second.Body)
	}
	if *renders != 1 {
		t.Errorf("renders = %d, want 1", *renders)
	}
	if first.Header().Get("X-Cache") != "MISS" || second.Header().Get("X-Cache") != "HIT" {
		t.Errorf("X-Cache = %q then %q", first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
	if ct := second.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("cached Content-Type = %q", ct)
	}

	clock.Advance(2 * time.Second) // 21s after first render
	third := get(h, "/?page=2")
	if third.Body.String() == first.Body.String() {
		t.Error("expired entry was served")
	}
	if *renders != 2 {
		t.Errorf("renders = %d, want 2", *renders)
	}

	if got := promtest.ToFloat64(metrics.Lookups.WithLabelValues("hit")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := promtest.ToFloat64(metrics.Lookups.WithLabelValues("miss")); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
	if got := promtest.ToFloat64(metrics.Stores); got != 2 {
		t.Errorf("stores = %v, want 2", got)
	}
}

func TestMiddleware_KeysOnPageQueryAndViewer(t *testing.T) {
	c := New(NewMemory(newClock().Now), time.Minute, nil, nil)
	inner, renders := counting()
	viewer := func(r *http.Request) string { return r.Header.Get("X-User") }
	h := c.Middleware("global", viewer)(inner)

	get(h, "/?page=1")
	get(h, "/?page=2")
	get(h, "/?page=2&x=1")
	if *renders != 3 {
		t.Errorf("renders = %d, want 3 distinct keys", *renders)
	}

	req := httptest.NewRequest(http.MethodGet, "/?page=1", nil)
	req.Header.Set("X-User", "u1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if *renders != 4 {
		t.Errorf("renders = %d, want signed-in viewer to miss the anonymous entry", *renders)
	}
}

func TestMiddleware_SkipsNonOK(t *testing.T) {
	c := New(NewMemory(newClock().Now), time.Minute, nil, nil)
	n := 0
	h := c.Middleware("global", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	get(h, "/")
	rec := get(h, "/")
	if n != 2 {
		t.Errorf("renders = %d, want 2 (errors not cached)", n)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}

	cookies := 0
	hc := c.Middleware("cookie", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookies++
		http.SetCookie(w, &http.Cookie{Name: "s", Value: "v"})
		w.Write([]byte("x"))
	}))
	get(hc, "/")
	get(hc, "/")
	if cookies != 2 {
		t.Errorf("renders = %d, want 2 (cookie responses not cached)", cookies)
	}
}

func TestMiddleware_PassesThroughPost(t *testing.T) {
	c := New(NewMemory(nil), time.Minute, nil, nil)
	inner, renders := counting()
	h := c.Middleware("global", nil)(inner)
	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	}
	if *renders != 2 {
		t.Errorf("renders = %d, want 2", *renders)
	}
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("down")
}
func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}
func (failingBackend) Clear(context.Context) error { return errors.New("down") }

func TestMiddleware_BackendDownStillServes(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	c := New(failingBackend{}, time.Minute, metrics, nil)
	inner, renders := counting()
	h := c.Middleware("global", nil)(inner)
	rec := get(h, "/")
	if rec.Code != http.StatusOK || *renders != 1 {
		t.Errorf("status=%d renders=%d", rec.Code, *renders)
	}
	if got := promtest.ToFloat64(metrics.Errors.WithLabelValues("get")); got != 1 {
		t.Errorf("get errors = %v, want 1", got)
	}
	if err := c.Invalidate(context.Background()); err == nil {
		t.Error("Invalidate: want error from failing backend")
	}
}

func TestInvalidate(t *testing.T) {
	c := New(NewMemory(nil), time.Minute, nil, nil)
	inner, renders := counting()
	h := c.Middleware("global", nil)(inner)
	get(h, "/")
	if err := c.Invalidate(context.Background()); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	get(h, "/")
	if *renders != 2 {
		t.Errorf("renders = %d, want 2 after Invalidate", *renders)
	}
}

func TestMemory_PurgeExpired(t *testing.T) {
	clock := newClock()
	m := NewMemory(clock.Now)
	ctx := context.Background()
	_ = m.Set(ctx, "a", []byte("1"), time.Second)
	_ = m.Set(ctx, "b", []byte("2"), time.Minute)

	clock.Advance(2 * time.Second)
	if n := m.PurgeExpired(); n != 1 {
		t.Errorf("PurgeExpired = %d, want 1", n)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
	if _, ok, _ := m.Get(ctx, "b"); !ok {
		t.Error("live entry purged")
	}
}

func TestKey_String(t *testing.T) {
	k := Key{Scope: "global", Page: 2, Query: "page=2&a=b", Viewer: Anonymous}
	if got, want := k.String(), "global|p=2|q=page%3D2%26a%3Db|v=anon"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
