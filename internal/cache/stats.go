package cache

import "time"

// counters are modified under Cache.mu only.
type counters struct {
	hits       uint64
	misses     uint64
	evictions  uint64
	insertions uint64
}

// Stats is a consistent snapshot of the cache counters.
//
// Counters are monotonic for the cache lifetime; Clear does not reset them.
type Stats struct {
	Hits       uint64
	Misses     uint64
	HitRate    float64
	Evictions  uint64
	Insertions uint64
	Size       int
	Capacity   int
}

// ItemInfo describes one stored entry.
type ItemInfo struct {
	Key          string
	Priority     int
	TTLRemaining time.Duration
	NoExpiry     bool
	AccessCount  uint64
}

// Info is a snapshot of every stored entry (MRU -> LRU) plus stats.
type Info struct {
	Items []ItemInfo
	Stats Stats
}

// Stats returns the current counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsLocked()
}

// Info returns a snapshot of all entries and stats. It mutates nothing.
func (c *Cache[V]) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Info{Items: c.itemsLocked(MinPriority - 1), Stats: c.statsLocked()}
}

// ItemsAbove returns the entries whose priority is strictly greater than
// priority, MRU -> LRU. Like Info, it mutates nothing.
func (c *Cache[V]) ItemsAbove(priority int) []ItemInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemsLocked(priority)
}

func (c *Cache[V]) itemsLocked(above int) []ItemInfo {
	now := c.now()
	items := make([]ItemInfo, 0, c.lru.Len())
	for el := c.lru.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry[V])
		if e.priority <= above {
			continue
		}
		items = append(items, ItemInfo{
			Key:          e.key,
			Priority:     e.priority,
			TTLRemaining: e.ttlRemaining(now),
			NoExpiry:     !e.hasExpiry,
			AccessCount:  e.accessCount,
		})
	}
	return items
}

func (c *Cache[V]) statsLocked() Stats {
	s := Stats{
		Hits:       c.stats.hits,
		Misses:     c.stats.misses,
		Evictions:  c.stats.evictions,
		Insertions: c.stats.insertions,
		Size:       len(c.items),
		Capacity:   c.maxSize,
	}
	if lookups := s.Hits + s.Misses; lookups > 0 {
		s.HitRate = float64(s.Hits) / float64(lookups)
	}
	return s
}
