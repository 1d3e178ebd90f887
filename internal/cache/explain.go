package cache

import (
	"fmt"
	"time"
)

// Explanation reports where a key stands in the eviction order.
type Explanation struct {
	Key     string
	Present bool

	Priority     int
	AccessCount  uint64
	TTLRemaining time.Duration
	Expired      bool

	// LRUPosition counts entries less recently used than this one.
	LRUPosition int
	// EvictionRank counts entries that would be evicted before this one.
	// Zero means this key is the next victim.
	EvictionRank int

	Reason string
}

// ExplainEviction describes how close key is to being evicted. It is a
// read-only diagnostic: recency, access counts and stats are untouched.
func (c *Cache[V]) ExplainEviction(key string) Explanation {
	c.mu.Lock()
	defer c.mu.Unlock()

	x := Explanation{Key: key}

	el, ok := c.items[key]
	if !ok {
		x.Reason = "not in cache"
		return x
	}

	now := c.now()
	target := el.Value.(*entry[V])
	x.Present = true
	x.Priority = target.priority
	x.AccessCount = target.accessCount
	x.TTLRemaining = target.ttlRemaining(now)
	x.Expired = target.expired(now)

	// Walk LRU -> MRU; entries before target with equal priority lose the
	// tie-break, every lower priority entry goes first regardless.
	before := true
	for cur := c.lru.Back(); cur != nil; cur = cur.Prev() {
		if cur == el {
			before = false
			continue
		}
		p := cur.Value.(*entry[V]).priority
		if before {
			x.LRUPosition++
		}
		if p < target.priority || (p == target.priority && before) {
			x.EvictionRank++
		}
	}

	switch {
	case x.Expired:
		x.Reason = "expired; removed on next get or sweep"
	case x.EvictionRank == 0:
		x.Reason = fmt.Sprintf("next eviction victim (priority %d, lru position %d)", x.Priority, x.LRUPosition)
	default:
		x.Reason = fmt.Sprintf("%d entries evicted first (priority %d, lru position %d)", x.EvictionRank, x.Priority, x.LRUPosition)
	}
	return x
}
