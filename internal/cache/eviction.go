package cache

import (
	"container/list"
	"time"
)

// evictLocked removes the entry chosen by victimLocked, counts it and
// returns the event to deliver. It reports false only when the cache is empty.
func (c *Cache[V]) evictLocked(now time.Time) (Event[V], bool) {
	el := c.victimLocked()
	if el == nil {
		return Event[V]{}, false
	}

	e := el.Value.(*entry[V])
	c.removeElementLocked(el)
	c.stats.evictions++
	c.trace.record(Operation{Kind: OpEvict, Key: e.key, Priority: e.priority, At: now})
	return Event[V]{Kind: EventEviction, Key: e.key}, true
}

// victimLocked selects the lowest-priority entry, least recently used among
// equals.
//
// Walking from the LRU end and replacing the candidate only on a strictly
// lower priority keeps the oldest entry of the minimum priority. This is an
// O(n) scan; it stops early once a MinPriority entry is found.
func (c *Cache[V]) victimLocked() *list.Element {
	var victim *list.Element
	lowest := MaxPriority + 1
	for el := c.lru.Back(); el != nil; el = el.Prev() {
		p := el.Value.(*entry[V]).priority
		if p >= lowest {
			continue
		}
		victim, lowest = el, p
		if p == MinPriority {
			break
		}
	}
	return victim
}
