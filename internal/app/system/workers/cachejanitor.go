// internal/app/system/workers/cachejanitor.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Purger drops expired entries and reports how many it removed.
type Purger interface {
	PurgeExpired() int
}

// CacheJanitor is a background worker that sweeps expired page-cache
// entries so idle keys do not accumulate in memory.
type CacheJanitor struct {
	cache    Purger
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewCacheJanitor creates a janitor that runs every interval.
func NewCacheJanitor(cache Purger, logger *zap.Logger, interval time.Duration) *CacheJanitor {
	return &CacheJanitor{
		cache:    cache,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the sweep loop.
func (w *CacheJanitor) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("cache janitor started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *CacheJanitor) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("cache janitor stopped")
	})
}

func (w *CacheJanitor) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep runs one purge pass.
func (w *CacheJanitor) Sweep() int {
	n := w.cache.PurgeExpired()
	if n > 0 {
		w.log.Debug("purged expired cache entries", zap.Int("count", n))
	}
	return n
}
