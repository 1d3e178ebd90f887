package cache

import (
	"fmt"
	"time"

	"github.com/go-kit/log/level"
)

// Reconfigure applies MaxSize, DefaultTTL and CleanupInterval from cfg to a
// running cache. Logger and TraceCapacity are fixed at New and ignored here.
//
// Shrinking MaxSize below Len evicts through the normal policy until the
// cache fits; each removal is counted and announced as an eviction. Entries
// already stored keep their expiry; DefaultTTL applies to later writes.
func (c *Cache[V]) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cleanupEvery := cfg.CleanupInterval
	if cleanupEvery == 0 {
		cleanupEvery = DefaultCleanupInterval
	}

	events, err := c.reconfigure(cfg, cleanupEvery)
	if err != nil {
		return err
	}

	// Wake the sweeper so the new period takes effect without waiting a tick.
	select {
	case c.resetTicker <- struct{}{}:
	default:
	}

	c.emit(events...)
	level.Info(c.logger).Log(
		"msg", "cache reconfigured",
		"max_size", cfg.MaxSize,
		"default_ttl", cfg.DefaultTTL,
		"cleanup_interval", cleanupEvery,
		"evicted", len(events),
	)
	return nil
}

func (c *Cache[V]) reconfigure(cfg Config, cleanupEvery time.Duration) ([]Event[V], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	c.maxSize = cfg.MaxSize
	c.defaultTTL = cfg.DefaultTTL
	c.cleanupEvery = cleanupEvery

	var events []Event[V]
	now := c.now()
	for len(c.items) > c.maxSize {
		ev, ok := c.evictLocked(now)
		if !ok {
			break
		}
		events = append(events, ev)
	}
	return events, nil
}
