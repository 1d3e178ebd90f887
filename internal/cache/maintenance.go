package cache

import (
	"time"

	"github.com/go-kit/log/level"
)

type sweeperState int32

const (
	sweeperIdle sweeperState = iota
	sweeperSweeping
	sweeperStopped
)

func (s sweeperState) String() string {
	switch s {
	case sweeperIdle:
		return "idle"
	case sweeperSweeping:
		return "sweeping"
	case sweeperStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

func (c *Cache[V]) sweeperStatus() sweeperState {
	return sweeperState(c.sweeper.Load())
}

// expiryLoop periodically scans and removes expired entries.
//
// Sweeper removal is neither an eviction nor a miss: it touches no counter
// and fires no event.
func (c *Cache[V]) expiryLoop() {
	defer c.wg.Done()
	defer c.sweeper.Store(int32(sweeperStopped))

	ticker := time.NewTicker(c.sweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.resetTicker:
			ticker.Reset(c.sweepInterval())
		case <-ticker.C:
			c.sweeper.Store(int32(sweeperSweeping))
			if removed := c.sweep(); removed > 0 {
				level.Debug(c.logger).Log("msg", "removed expired entries", "removed", removed)
			}
			c.sweeper.Store(int32(sweeperIdle))
		}
	}
}

func (c *Cache[V]) sweepInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleanupEvery
}

func (c *Cache[V]) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := c.deleteExpiredLocked(now)
	if removed > 0 {
		c.trace.record(Operation{Kind: OpSweep, Removed: removed, At: now})
	}
	return removed
}

// deleteExpiredLocked removes all expired keys.
//
// This is O(n). A min-heap on expiry would avoid the scan at the cost of
// another index to keep in sync.
func (c *Cache[V]) deleteExpiredLocked(now time.Time) int {
	removed := 0
	for _, el := range c.items {
		if el.Value.(*entry[V]).expired(now) {
			c.removeElementLocked(el)
			removed++
		}
	}
	return removed
}
