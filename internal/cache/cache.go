package cache

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const (
	// MinPriority entries are evicted first.
	MinPriority = 1
	// MaxPriority entries are evicted last.
	MaxPriority = 10
)

// ErrClosed is returned by operations that need a running cache.
var ErrClosed = errors.New("cache is closed")

// Cache is a concurrency-safe in-memory key–value cache with TTL, priority
// eviction and LRU tie-breaking.
//
// A map gives O(1) key lookup and a doubly-linked list maintains recency
// ordering. Index, entries, stats and the trace log are guarded by one mutex.
//
// Events are collected while the mutex is held and delivered to listeners
// after it is released, so a listener may call back into the cache.
//
// Ownership model:
// Cache owns its sweeper goroutine. Call Close to stop it.
type Cache[V any] struct {
	mu sync.Mutex

	maxSize    int
	defaultTTL time.Duration
	items      map[string]*list.Element
	lru        *list.List // Front = most recently used (MRU), Back = least recently used (LRU)
	stats      counters
	trace      *traceLog

	listenersMu sync.RWMutex
	listeners   []EventListener[V]

	logger log.Logger
	now    func() time.Time

	// Goroutine ownership.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	cleanupEvery time.Duration // guarded by mu; Reconfigure may change it
	resetTicker  chan struct{}
	sweeper      atomic.Int32
	closed       bool
}

// entry is the value stored in the LRU list elements.
// We keep the key here because eviction starts from list nodes.
//
// hasExpiry=false means "never expires".
type entry[V any] struct {
	key            string
	value          V
	priority       int
	expiresAt      time.Time
	hasExpiry      bool
	createdAt      time.Time
	lastAccessedAt time.Time
	accessCount    uint64
}

// expired reports whether now is strictly past the entry's expiry.
func (e *entry[V]) expired(now time.Time) bool {
	return e.hasExpiry && now.After(e.expiresAt)
}

func (e *entry[V]) ttlRemaining(now time.Time) time.Duration {
	if !e.hasExpiry {
		return 0
	}
	return max(e.expiresAt.Sub(now), 0)
}

// New constructs a cache and starts the expiry sweeper.
func New[V any](cfg Config) (*Cache[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	now := cfg.now
	if now == nil {
		now = time.Now
	}
	cleanupEvery := cfg.CleanupInterval
	if cleanupEvery == 0 {
		cleanupEvery = DefaultCleanupInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Cache[V]{
		maxSize:      cfg.MaxSize,
		defaultTTL:   cfg.DefaultTTL,
		items:        make(map[string]*list.Element),
		lru:          list.New(),
		trace:        newTraceLog(cfg.TraceCapacity),
		logger:       logger,
		now:          now,
		ctx:          ctx,
		cancel:       cancel,
		cleanupEvery: cleanupEvery,
		resetTicker:  make(chan struct{}, 1),
	}

	c.wg.Add(1)
	go c.expiryLoop()

	return c, nil
}

// Close stops the sweeper and prevents further writes.
//
// Close is safe to call multiple times. Reads keep working after Close.
func (c *Cache[V]) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cancel := c.cancel
	c.mu.Unlock()

	// Cancel outside the lock; the sweeper needs the lock to finish a tick.
	cancel()
	c.wg.Wait()
	level.Debug(c.logger).Log("msg", "cache closed")
	return nil
}

// Put writes or overwrites a key.
//
// ttl <= 0 selects the configured default TTL; a resulting TTL of zero means
// the entry never expires. priority is clamped to [MinPriority, MaxPriority].
//
// Put returns false only for an empty key or a closed cache.
func (c *Cache[V]) Put(key string, value V, ttl time.Duration, priority int) bool {
	if key == "" {
		return false
	}
	ok, events := c.put(key, value, ttl, clampPriority(priority))
	c.emit(events...)
	return ok
}

func (c *Cache[V]) put(key string, value V, ttl time.Duration, priority int) (bool, []Event[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, nil
	}

	now := c.now()
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	var events []Event[V]

	if el, ok := c.items[key]; ok {
		// Overwrite in place: not an eviction, but still an insertion.
		e := el.Value.(*entry[V])
		e.reset(value, priority, ttl, now)
		c.lru.MoveToFront(el)
	} else {
		if len(c.items) >= c.maxSize {
			if ev, ok := c.evictLocked(now); ok {
				events = append(events, ev)
			}
		}
		e := &entry[V]{key: key}
		e.reset(value, priority, ttl, now)
		c.items[key] = c.lru.PushFront(e)
	}

	c.stats.insertions++
	c.trace.record(Operation{Kind: OpPut, Key: key, Priority: priority, At: now})
	events = append(events, Event[V]{Kind: EventInsert, Key: key, Value: value})

	// A zero-capacity cache can never hold what it was just given.
	if len(c.items) > c.maxSize {
		if ev, ok := c.evictLocked(now); ok {
			events = append(events, ev)
		}
	}

	return true, events
}

func (e *entry[V]) reset(value V, priority int, ttl time.Duration, now time.Time) {
	e.value = value
	e.priority = priority
	e.hasExpiry = ttl > 0
	e.expiresAt = time.Time{}
	if e.hasExpiry {
		e.expiresAt = now.Add(ttl)
	}
	e.createdAt = now
	e.lastAccessedAt = now
	e.accessCount = 0
}

// Get reads a key.
//
// It performs lazy TTL expiration: an expired key is removed and reported as
// a miss. Lazy expiry is never counted as an eviction.
func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok, ev := c.get(key)
	c.emit(ev)
	return v, ok
}

func (c *Cache[V]) get(key string) (V, bool, Event[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	now := c.now()

	el, ok := c.items[key]
	if !ok {
		c.stats.misses++
		c.trace.record(Operation{Kind: OpGet, Key: key, At: now})
		return zero, false, Event[V]{Kind: EventMiss, Key: key}
	}

	e := el.Value.(*entry[V])
	if e.expired(now) {
		c.removeElementLocked(el)
		c.stats.misses++
		c.trace.record(Operation{Kind: OpExpire, Key: key, Priority: e.priority, At: now})
		return zero, false, Event[V]{Kind: EventMiss, Key: key}
	}

	e.lastAccessedAt = now
	e.accessCount++
	c.lru.MoveToFront(el)
	c.stats.hits++
	c.trace.record(Operation{Kind: OpGet, Key: key, Priority: e.priority, Hit: true, At: now})
	return e.value, true, Event[V]{Kind: EventHit, Key: key, Value: e.value}
}

// Delete removes a key if present and reports whether it was.
//
// Explicit removal is not a cache policy event: no stats change and no
// listener is notified.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElementLocked(el)
	c.trace.record(Operation{Kind: OpDelete, Key: key, At: c.now()})
	return true
}

// Clear removes every entry. Stats counters and the sweeper are untouched.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.items)
	c.items = make(map[string]*list.Element)
	c.lru.Init()
	c.trace.record(Operation{Kind: OpClear, Removed: removed, At: c.now()})
}

// Len returns the number of stored entries.
//
// Note: Len includes entries that have expired but haven't been removed yet.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Contains reports whether key holds a live entry. It does not touch
// recency, access counts or stats.
func (c *Cache[V]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	return !el.Value.(*entry[V]).expired(c.now())
}

// Keys returns keys in MRU -> LRU order.
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, c.lru.Len())
	for el := c.lru.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*entry[V]).key)
	}
	return out
}

func (c *Cache[V]) removeElementLocked(el *list.Element) {
	delete(c.items, el.Value.(*entry[V]).key)
	c.lru.Remove(el)
}

func clampPriority(p int) int {
	return min(max(p, MinPriority), MaxPriority)
}
