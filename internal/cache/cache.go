package cache

import (
	"context"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/hankstank/mlb-data/internal/model"
)

// Config holds cache settings.
type Config struct {
	SweepInterval time.Duration    // background expiry sweep cadence
	Now           func() time.Time // injectable clock; nil means time.Now
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SweepInterval: time.Minute,
	}
}

// Stats contains runtime counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Evictions int64
	Size      int
}

type entry struct {
	value      model.Payload
	insertedAt time.Time
	expiresAt  time.Time
}

// Cache is a process-local key/value store with per-entry expiry. It
// holds no authority: losing it never loses data, it only costs a trip
// to a slower store.
type Cache struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]entry
	hits    int64
	misses  int64
	sets    int64
	evicted int64

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Cache. Start must be called for the background sweep.
func New(cfg Config, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	return &Cache{
		cfg:     cfg,
		logger:  logger,
		entries: make(map[string]entry),
	}
}

// Start begins the background sweep loop.
func (c *Cache) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.sweepLoop()

	c.logger.Info("cache started", "sweep_interval", c.cfg.SweepInterval)
	return nil
}

// Stop shuts down the sweep loop.
func (c *Cache) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("cache stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get returns the value for key, or false if absent or expired. Expired
// entries are deleted lazily on read.
func (c *Cache) Get(key string) (model.Payload, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.count(&c.misses)
		return nil, false
	}

	if now.After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: the entry may have been replaced.
		if cur, ok := c.entries[key]; ok && now.After(cur.expiresAt) {
			delete(c.entries, key)
			c.evicted++
		}
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	c.count(&c.hits)
	return e.value, true
}

// Set stores value under key with the given TTL. A non-positive TTL
// stores nothing.
func (c *Cache) Set(key string, value model.Payload, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	now := c.now()

	c.mu.Lock()
	c.entries[key] = entry{
		value:      value,
		insertedAt: now,
		expiresAt:  now.Add(ttl),
	}
	c.sets++
	c.mu.Unlock()
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// DeleteByPattern removes every key matching a path-style glob (e.g.
// "team-stats:2023:*") and returns the count removed.
func (c *Cache) DeleteByPattern(glob string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if ok, err := path.Match(glob, key); err == nil && ok {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// TTLRemaining returns the time until key expires, or false if the key
// is absent or already expired.
func (c *Cache) TTLRemaining(key string) (time.Duration, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || now.After(e.expiresAt) {
		return 0, false
	}
	return e.expiresAt.Sub(now), true
}

// Len returns the current entry count, expired entries included until
// the next sweep.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns current counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Sets:      c.sets,
		Evictions: c.evicted,
		Size:      len(c.entries),
	}
}

// sweepLoop proactively removes expired entries to bound memory between
// reads.
func (c *Cache) sweepLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep removes all expired entries.
func (c *Cache) sweep() {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	c.evicted += int64(removed)
	remaining := len(c.entries)
	c.mu.Unlock()

	if removed > 0 {
		c.logger.Debug("cache sweep", "removed", removed, "remaining", remaining)
	}
}

func (c *Cache) now() time.Time {
	if c.cfg.Now != nil {
		return c.cfg.Now()
	}
	return time.Now()
}

func (c *Cache) count(field *int64) {
	c.mu.Lock()
	*field++
	c.mu.Unlock()
}
