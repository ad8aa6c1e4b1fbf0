package cache

import (
	"context"
	"sync"
	"time"

	"mpdharvest/internal/logger"
)

type entry struct {
	data    []byte
	expires time.Time
}

// ResponseCache is a thread-safe, in-memory cache of rendered resolution
// responses keyed by manifest URL. Entries expire after a fixed TTL.
type ResponseCache struct {
	mutex  sync.RWMutex
	cache  map[string]entry
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time

	// Control
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates and returns a new ResponseCache.
func New(log logger.Logger, ttl time.Duration) *ResponseCache {
	ctx, cancel := context.WithCancel(context.Background())
	return &ResponseCache{
		cache:  make(map[string]entry),
		ttl:    ttl,
		logger: log,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins the background eviction worker.
func (rc *ResponseCache) Start() {
	rc.logger.Infof("Starting response cache eviction worker...")
	go rc.evictionWorker()
}

// Stop gracefully shuts down the eviction worker.
func (rc *ResponseCache) Stop() {
	rc.logger.Infof("Stopping response cache eviction worker...")
	rc.cancel()
}

// Set adds a response to the cache. A non-positive TTL disables caching.
func (rc *ResponseCache) Set(key string, data []byte) {
	if rc.ttl <= 0 {
		return
	}
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	rc.cache[key] = entry{data: data, expires: rc.now().Add(rc.ttl)}
	rc.logger.Debugf("Cached response: %s, size: %d bytes", key, len(data))
}

// Get retrieves a response that has not expired yet.
func (rc *ResponseCache) Get(key string) ([]byte, bool) {
	rc.mutex.RLock()
	defer rc.mutex.RUnlock()
	e, found := rc.cache[key]
	if !found || !rc.now().Before(e.expires) {
		return nil, false
	}
	return e.data, true
}

// Len returns the number of stored entries, expired ones included.
func (rc *ResponseCache) Len() int {
	rc.mutex.RLock()
	defer rc.mutex.RUnlock()
	return len(rc.cache)
}

// evictionWorker runs in the background to clean up expired responses.
func (rc *ResponseCache) evictionWorker() {
	interval := rc.ttl
	if interval <= 0 || interval > 10*time.Second {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rc.ctx.Done():
			rc.logger.Infof("Eviction worker stopped.")
			return
		case <-ticker.C:
			rc.runEviction()
		}
	}
}

func (rc *ResponseCache) runEviction() {
	now := rc.now()

	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	evictedCount := 0
	for key, e := range rc.cache {
		if !now.Before(e.expires) {
			delete(rc.cache, key)
			evictedCount++
		}
	}

	if evictedCount > 0 {
		rc.logger.Infof("Evicted %d responses from cache. Current cache size: %d.", evictedCount, len(rc.cache))
	} else {
		rc.logger.Debugf("No responses to evict. Current cache size: %d.", len(rc.cache))
	}
}
