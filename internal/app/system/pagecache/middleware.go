package pagecache

import (
	"bytes"
	"net/http"

	"github.com/dalemusser/postboard/internal/app/system/paging"
)

// Anonymous is the Viewer value for visitors without a session.
const Anonymous = "anon"

// Middleware serves GET and HEAD requests for scope from the cache and
// stores successful renderings. viewer partitions entries by who is
// looking, since pages include the signed-in user's navigation.
//
// Responses that set cookies or return a non-200 status are not stored.
func (c *Cache) Middleware(scope string, viewer func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			v := Anonymous
			if viewer != nil {
				if id := viewer(r); id != "" {
					v = id
				}
			}
			key := Key{
				Scope:  scope,
				Page:   paging.ParsePage(r),
				Query:  r.URL.RawQuery,
				Viewer: v,
			}

			if e, ok := c.Get(r.Context(), key); ok {
				w.Header().Set("X-Cache", "HIT")
				writeEntry(w, r, e)
				return
			}

			rec := &recorder{header: http.Header{}, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			e := Entry{
				Status:      rec.status,
				ContentType: rec.header.Get("Content-Type"),
				Body:        rec.body.Bytes(),
			}
			if e.Status == http.StatusOK && rec.header.Get("Set-Cookie") == "" {
				c.Put(r.Context(), key, e)
			}

			for k, vals := range rec.header {
				w.Header()[k] = vals
			}
			w.Header().Set("X-Cache", "MISS")
			w.WriteHeader(e.Status)
			if r.Method != http.MethodHead {
				_, _ = w.Write(e.Body)
			}
		})
	}
}

func writeEntry(w http.ResponseWriter, r *http.Request, e Entry) {
	if e.ContentType != "" {
		w.Header().Set("Content-Type", e.ContentType)
	}
	w.WriteHeader(e.Status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(e.Body)
	}
}

// recorder buffers a response so it can be cached before being sent.
type recorder struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = code
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	if r.header.Get("Content-Type") == "" {
		r.header.Set("Content-Type", http.DetectContentType(b))
	}
	return r.body.Write(b)
}
