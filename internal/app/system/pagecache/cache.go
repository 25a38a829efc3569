// Package pagecache keeps short-lived copies of rendered pages.
//
// An entry lives for the cache's TTL from the moment it is first rendered.
// Writes to the underlying data do not invalidate entries, so a cached page
// can be up to one TTL stale.
package pagecache

import (
	"context"
	"fmt"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// DefaultTTL is how long a rendered page is served from cache.
const DefaultTTL = 20 * time.Second

// Key identifies one cached rendering.
type Key struct {
	Scope  string // e.g. "global"
	Page   int
	Query  string // raw query string
	Viewer string // "anon" or the signed-in user's ID
}

func (k Key) String() string {
	return fmt.Sprintf("%s|p=%d|q=%s|v=%s", k.Scope, k.Page, url.QueryEscape(k.Query), k.Viewer)
}

// Entry is a cached response.
type Entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Cache wraps a Backend with a fixed TTL, metrics and logging.
// Backend failures are logged and treated as misses.
type Cache struct {
	backend Backend
	ttl     time.Duration
	metrics *Metrics
	log     *zap.Logger
}

func New(backend Backend, ttl time.Duration, metrics *Metrics, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{backend: backend, ttl: ttl, metrics: metrics, log: logger}
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the entry for key if present and unexpired.
func (c *Cache) Get(ctx context.Context, key Key) (Entry, bool) {
	raw, ok, err := c.backend.Get(ctx, key.String())
	if err != nil {
		c.metrics.Errors.WithLabelValues("get").Inc()
		c.log.Warn("page cache get failed", zap.String("key", key.String()), zap.Error(err))
		ok = false
	}
	if !ok {
		c.metrics.Lookups.WithLabelValues("miss").Inc()
		return Entry{}, false
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.metrics.Errors.WithLabelValues("decode").Inc()
		c.log.Warn("page cache entry corrupt", zap.String("key", key.String()), zap.Error(err))
		c.metrics.Lookups.WithLabelValues("miss").Inc()
		return Entry{}, false
	}
	c.metrics.Lookups.WithLabelValues("hit").Inc()
	return e, true
}

// Put stores e under key for the cache TTL.
func (c *Cache) Put(ctx context.Context, key Key, e Entry) {
	raw, err := json.Marshal(e)
	if err != nil {
		c.metrics.Errors.WithLabelValues("encode").Inc()
		c.log.Warn("page cache encode failed", zap.Error(err))
		return
	}
	if err := c.backend.Set(ctx, key.String(), raw, c.ttl); err != nil {
		c.metrics.Errors.WithLabelValues("set").Inc()
		c.log.Warn("page cache set failed", zap.String("key", key.String()), zap.Error(err))
		return
	}
	c.metrics.Stores.Inc()
}

// Invalidate drops every cached page.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.backend.Clear(ctx); err != nil {
		c.metrics.Errors.WithLabelValues("clear").Inc()
		return fmt.Errorf("pagecache: clear: %w", err)
	}
	return nil
}
