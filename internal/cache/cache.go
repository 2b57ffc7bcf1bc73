// internal/cache/cache.go
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"airquality-agent/internal/common/observability"
)

// entry is one cached value with its validity window.
type entry struct {
	value     interface{}
	createdAt time.Time
	ttl       time.Duration
	hitCount  int64
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.createdAt.Add(e.ttl))
}

// flight is the per-key in-flight marker: late arrivals for the same key
// wait on done instead of recomputing.
type flight struct {
	done  chan struct{}
	value interface{}
	err   error
}

// Stats is a point-in-time snapshot of the cache counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
}

// Cache is an in-memory key/value store with per-entry TTL, passive expiry
// on read, a background sweep, and single-flight GetOrCompute. Values must
// be treated as immutable by callers once stored.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	inflight map[string]*flight

	defaultTTL    time.Duration
	sweepInterval time.Duration
	observer      observability.Observer

	hits      int64
	misses    int64
	evictions int64

	stopOnce sync.Once
	stop     chan struct{}
}

// Option configures a Cache.
type Option func(*Cache)

// WithObserver routes hit/miss/eviction observations to obs.
func WithObserver(obs observability.Observer) Option {
	return func(c *Cache) {
		c.observer = obs
	}
}

// WithSweepInterval overrides how often the background sweep runs.
func WithSweepInterval(interval time.Duration) Option {
	return func(c *Cache) {
		c.sweepInterval = interval
	}
}

// New creates a Cache and starts its background sweep goroutine. Call Close
// to stop it.
func New(defaultTTL time.Duration, opts ...Option) *Cache {
	c := &Cache{
		entries:       make(map[string]*entry),
		inflight:      make(map[string]*flight),
		defaultTTL:    defaultTTL,
		sweepInterval: 5 * time.Minute,
		observer:      observability.NoopObserver{},
		stop:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.sweepLoop()
	return c
}

// Close stops the background sweep.
func (c *Cache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// Key derives a deterministic cache key from the canonicalized semantic
// arguments of a call. Map arguments serialize with sorted keys, so
// argument order and object identity never influence the key.
func Key(parts ...interface{}) string {
	canonical := make([]string, 0, len(parts))
	for _, part := range parts {
		canonical = append(canonical, canonicalize(part))
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%v", canonical)))
	return hex.EncodeToString(sum[:])
}

func canonicalize(v interface{}) string {
	switch val := v.(type) {
	case map[string]string:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, k+"="+val[k])
		}
		return fmt.Sprintf("%v", out)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

// Get returns the value for key, or ok=false when absent or expired. An
// expired entry is evicted, never returned.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	now := time.Now()
	if exists && !e.expired(now) {
		c.mu.Lock()
		e.hitCount++
		c.hits++
		c.mu.Unlock()
		c.observer.CacheHit()
		return e.value, true
	}

	c.mu.Lock()
	if exists {
		// Re-check under the write lock: another goroutine may have
		// replaced the entry meanwhile.
		if cur, still := c.entries[key]; still && cur.expired(now) {
			delete(c.entries, key)
			c.evictions++
			c.observer.CacheEviction()
		}
	}
	c.misses++
	c.mu.Unlock()
	c.observer.CacheMiss()
	return nil, false
}

// Set stores value under key. A non-positive ttl falls back to the default.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.entries[key] = &entry{
		value:     value,
		createdAt: time.Now(),
		ttl:       ttl,
	}
	c.mu.Unlock()
}

// GetOrCompute returns the cached value for key, computing it at most once
// per validity window. Concurrent callers for the same key share one
// computation; callers for unrelated keys never contend beyond the map
// access itself. A compute error is returned to every waiter and nothing is
// cached.
func (c *Cache) GetOrCompute(key string, ttl time.Duration, compute func() (interface{}, error)) (interface{}, error) {
	for {
		if value, ok := c.Get(key); ok {
			return value, nil
		}

		c.mu.Lock()
		// The value may have landed between Get and the lock.
		if e, ok := c.entries[key]; ok && !e.expired(time.Now()) {
			e.hitCount++
			c.hits++
			c.mu.Unlock()
			c.observer.CacheHit()
			return e.value, nil
		}
		if f, ok := c.inflight[key]; ok {
			c.mu.Unlock()
			<-f.done
			if f.err != nil {
				return nil, f.err
			}
			return f.value, nil
		}
		f := &flight{done: make(chan struct{})}
		c.inflight[key] = f
		c.mu.Unlock()

		f.value, f.err = compute()

		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
		if f.err == nil {
			c.Set(key, f.value, ttl)
		}
		close(f.done)

		return f.value, f.err
	}
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.entries),
	}
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

// sweep removes expired entries. It only holds the lock for the map update.
func (c *Cache) sweep() {
	now := time.Now()
	evicted := 0

	c.mu.Lock()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			c.evictions++
			evicted++
		}
	}
	c.mu.Unlock()

	for i := 0; i < evicted; i++ {
		c.observer.CacheEviction()
	}
}
